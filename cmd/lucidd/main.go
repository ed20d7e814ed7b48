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

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/HamiGames/Lucid-sub020/anchor"
	"github.com/HamiGames/Lucid-sub020/bus"
	"github.com/HamiGames/Lucid-sub020/conf"
	"github.com/HamiGames/Lucid-sub020/consensus"
	"github.com/HamiGames/Lucid-sub020/crypto"
	"github.com/HamiGames/Lucid-sub020/crypto/kms"
	"github.com/HamiGames/Lucid-sub020/metric"
	"github.com/HamiGames/Lucid-sub020/sessions"
	"github.com/HamiGames/Lucid-sub020/types"
	"github.com/HamiGames/Lucid-sub020/utils/log"
)

var (
	version = "1"
	commit  = "unknown"
)

var (
	showVersion bool
	configFile  string
	logLevel    string
)

const name = `lucidd`
const desc = `lucidd anchors recorded sessions and schedules slot leaders`

func init() {
	flag.BoolVar(&showVersion, "version", false, "Show version information and exit")
	flag.StringVar(&configFile, "config", "./config.yaml", "Config file path")
	flag.StringVar(&logLevel, "log-level", "info", "Log level, e.g. debug, info, warning")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "\n%s\n\n", desc)
		fmt.Fprintf(os.Stderr, "Usage: %s [arguments]\n", name)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	if showVersion {
		fmt.Printf("%v %v %v %v %v\n",
			name, version, commit, runtime.GOOS, runtime.GOARCH)
		os.Exit(0)
	}
	log.SetStringLevel(logLevel, log.InfoLevel)
	log.Infof("%s starting, version %s, commit %s", name, version, commit)

	var err error
	if conf.GConf, err = conf.LoadConfig(configFile); err != nil {
		log.WithField("config", configFile).WithError(err).Fatal("load config failed")
	}
	cfg := conf.GConf
	log.WithFields(log.Fields{
		"genesis":      cfg.Genesis,
		"slotDuration": cfg.Consensus.SlotDuration,
		"epochSlots":   cfg.Consensus.SlotsPerEpoch,
	}).Info("protocol parameters")

	masterKey := []byte(os.Getenv("LUCID_MASTER_KEY"))
	if cfg.IsTestMode {
		masterKey = nil
	}
	if err = kms.InitLocalKeyPair(cfg.PrivateKeyFile, masterKey); err != nil {
		log.WithError(err).Fatal("init local key pair failed")
	}
	nodeID, err := kms.GetLocalNodeID()
	if err != nil {
		log.WithError(err).Fatal("resolve local node id failed")
	}
	log.WithField("node", nodeID).Info("local key pair ready")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consensusStore, err := consensus.OpenStore(filepath.Join(cfg.WorkingRoot, "consensus"))
	if err != nil {
		log.WithError(err).Fatal("open consensus store failed")
	}
	defer consensusStore.Close()

	sessionStore, err := sessions.OpenStore(filepath.Join(cfg.WorkingRoot, "sessions"))
	if err != nil {
		log.WithError(err).Fatal("open session store failed")
	}
	defer sessionStore.Close()

	if cfg.Ledger == nil {
		log.Fatal("config missing ledger section")
	}
	ledger, err := anchor.DialEthLedger(ctx, cfg.Ledger.Endpoint,
		cfg.Ledger.ContractAddress, cfg.Ledger.SignerKeyHex)
	if err != nil {
		log.WithError(err).Fatal("dial anchor ledger failed")
	}
	anchorCfg := anchor.DefaultConfig()
	if cfg.Ledger.SubmitAttempts > 0 {
		anchorCfg.SubmitAttempts = cfg.Ledger.SubmitAttempts
	}
	if cfg.Ledger.ConfirmPolls > 0 {
		anchorCfg.ConfirmPolls = cfg.Ledger.ConfirmPolls
	}
	if cfg.Ledger.ConfirmInterval > 0 {
		anchorCfg.ConfirmInterval = cfg.Ledger.ConfirmInterval
	}
	if cfg.Ledger.BreakerCooldown > 0 {
		anchorCfg.BreakerCooldown = cfg.Ledger.BreakerCooldown
	}

	metric.InitMetrics()
	metric.StartMetricWeb(cfg.ListenAddr)

	eventBus := bus.New()
	keys := kms.NewSessionKeyStore()
	anchors := anchor.NewClient(ledger, anchorCfg)
	pipeline := sessions.NewPipeline(sessionStore, keys, anchors, eventBus, cfg.PipelineWorkers)
	defer pipeline.Release()

	snap, err := consensusStore.LoadCooldown()
	if err != nil {
		log.WithError(err).Fatal("restore cooldown table failed")
	}
	clock := consensus.NewSlotClock(cfg.Genesis)
	collector := consensus.NewCollector(consensusStore, clock)
	scheduler := consensus.NewScheduler(consensusStore, collector, clock,
		consensus.NewCooldownTable(snap), eventBus)

	// an anchored session is this node's publish for the slot in progress
	localEntity := nodeID.Entity(cfg.PoolID)
	err = eventBus.Subscribe(bus.TopicSessionAnchored, func(m *types.SessionManifest) {
		slot := clock.SlotAt(time.Now())
		if perr := scheduler.Publish(slot, localEntity, m.MerkleRoot); perr != nil {
			log.WithFields(log.Fields{
				"session": m.SessionID,
				"slot":    slot,
			}).WithError(perr).Debug("anchored outside our leadership window")
		}
	})
	if err != nil {
		log.WithError(err).Fatal("subscribe session events failed")
	}

	pub, err := kms.GetLocalPublicKey()
	if err != nil {
		log.WithError(err).Fatal("load local public key failed")
	}
	owner, err := crypto.PubKeyHash(pub)
	if err != nil {
		log.WithError(err).Fatal("derive owner address failed")
	}
	spooler := sessions.NewSpooler(pipeline,
		filepath.Join(cfg.WorkingRoot, "spool"), owner, 5*time.Second)
	go func() {
		if serr := spooler.Run(ctx); serr != nil {
			log.WithError(serr).Error("session spooler failed")
		}
	}()

	start := time.Now()
	log.WithFields(log.Fields{
		"slot":  clock.SlotAt(start),
		"epoch": clock.EpochAt(start),
	}).Info("joining slot schedule")

	scheduler.Run(ctx)
	log.Info("shutdown complete")
}
