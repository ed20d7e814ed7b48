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
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/HamiGames/Lucid-sub020/proto"
	"github.com/HamiGames/Lucid-sub020/types"
)

const testConfigYAML = `
WorkingRoot: "./node"
PrivateKeyFile: "private.key"
ListenAddr: "127.0.0.1:9100"
PoolID: "pool-east"
Genesis: 2024-01-01T00:00:00Z
PipelineWorkers: 8
Ledger:
  Endpoint: "http://127.0.0.1:8545"
  ContractAddress: "0x1111111111111111111111111111111111111111"
  SubmitAttempts: 3
  ConfirmPolls: 30
  ConfirmInterval: 2s
`

func TestLoadConfig(t *testing.T) {
	Convey("Given a config file on disk", t, func() {
		path := filepath.Join(t.TempDir(), "config.yaml")
		So(os.WriteFile(path, []byte(testConfigYAML), 0600), ShouldBeNil)

		config, err := LoadConfig(path)
		So(err, ShouldBeNil)

		Convey("Fields are populated from yaml", func() {
			So(config.ListenAddr, ShouldEqual, "127.0.0.1:9100")
			So(config.PoolID, ShouldEqual, proto.PoolID("pool-east"))
			So(config.PipelineWorkers, ShouldEqual, 8)
			So(config.Genesis, ShouldEqual, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
			So(config.Ledger, ShouldNotBeNil)
			So(config.Ledger.ConfirmInterval, ShouldEqual, 2*time.Second)
		})

		Convey("Relative key paths resolve against the working root", func() {
			So(config.PrivateKeyFile, ShouldEqual, filepath.Join("./node", "private.key"))
		})

		Convey("The consensus echo carries the compiled constants", func() {
			So(config.Consensus.SlotDuration, ShouldEqual, types.SlotDuration)
			So(config.Consensus.CooldownSlots, ShouldEqual, types.CooldownSlots)
			So(config.Consensus.MinLiveScore, ShouldEqual, types.MinLiveScore)
		})
	})

	Convey("A config without a genesis instant is rejected", t, func() {
		path := filepath.Join(t.TempDir(), "config.yaml")
		So(os.WriteFile(path, []byte("WorkingRoot: .\n"), 0600), ShouldBeNil)
		config, err := LoadConfig(path)
		So(err, ShouldNotBeNil)
		So(config, ShouldBeNil)
	})

	Convey("A missing config file is an error", t, func() {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		So(err, ShouldNotBeNil)
	})
}
