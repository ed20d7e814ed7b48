/*
 * Copyright 2024 The Lucid Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package conf

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/HamiGames/Lucid-sub020/proto"
	"github.com/HamiGames/Lucid-sub020/utils/log"
)

// LedgerInfo holds the anchor ledger connection settings.
type LedgerInfo struct {
	// Endpoint is the JSON-RPC endpoint of the ledger node.
	Endpoint string `yaml:"Endpoint"`
	// ContractAddress is the hex address of the session registry contract.
	ContractAddress string `yaml:"ContractAddress"`
	// SignerKeyHex is the hex-encoded submission key. Test deployments
	// only, production keys come from the key file.
	SignerKeyHex string `yaml:"SignerKeyHex,omitempty"`
	// SubmitAttempts bounds anchor submission retries.
	SubmitAttempts int `yaml:"SubmitAttempts"`
	// ConfirmPolls bounds confirmation polling per submission.
	ConfirmPolls int `yaml:"ConfirmPolls"`
	// ConfirmInterval is the wait between confirmation polls.
	ConfirmInterval time.Duration `yaml:"ConfirmInterval"`
	// BreakerCooldown reopens the anchor circuit breaker after this
	// long. Zero keeps it closed until an operator reset.
	BreakerCooldown time.Duration `yaml:"BreakerCooldown"`
}

// Config holds all the config read from the yaml config file.
type Config struct {
	IsTestMode bool `yaml:"IsTestMode,omitempty"` // test mode uses an empty master key

	WorkingRoot    string       `yaml:"WorkingRoot"`
	PrivateKeyFile string       `yaml:"PrivateKeyFile"`
	ListenAddr     string       `yaml:"ListenAddr"`
	ThisNodeID     proto.NodeID `yaml:"ThisNodeID,omitempty"`
	PoolID         proto.PoolID `yaml:"PoolID,omitempty"`

	// Genesis is the shared slot-zero instant of the deployment.
	Genesis time.Time `yaml:"Genesis"`

	// PipelineWorkers sets the chunk sealing parallelism.
	PipelineWorkers int `yaml:"PipelineWorkers"`

	Ledger *LedgerInfo `yaml:"Ledger"`

	// Consensus echoes the protocol constants for operator visibility,
	// filled at load time and never read from the file.
	Consensus ConsensusParams `yaml:"-"`
}

// GConf is the global config pointer.
var GConf *Config

// LoadConfig loads config from configPath and resolves relative paths
// against the working root.
func LoadConfig(configPath string) (config *Config, err error) {
	configBytes, err := os.ReadFile(configPath)
	if err != nil {
		err = errors.Wrap(err, "read config file failed")
		return
	}
	config = &Config{}
	if err = yaml.Unmarshal(configBytes, config); err != nil {
		err = errors.Wrap(err, "unmarshal config file failed")
		config = nil
		return
	}

	if config.WorkingRoot == "" {
		config.WorkingRoot = "."
	}
	if config.PrivateKeyFile == "" {
		config.PrivateKeyFile = "private.key"
	}
	if !filepath.IsAbs(config.PrivateKeyFile) {
		config.PrivateKeyFile = filepath.Join(config.WorkingRoot, config.PrivateKeyFile)
	}
	if config.PipelineWorkers <= 0 {
		config.PipelineWorkers = 4
	}
	if config.Genesis.IsZero() {
		err = errors.New("config missing genesis instant")
		config = nil
		return
	}
	config.Consensus = Params()

	log.WithFields(log.Fields{
		"workingRoot": config.WorkingRoot,
		"genesis":     config.Genesis,
	}).Debug("config loaded")
	return
}
