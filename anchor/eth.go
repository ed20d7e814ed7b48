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

package anchor

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"

	"github.com/HamiGames/Lucid-sub020/crypto/hash"
	"github.com/HamiGames/Lucid-sub020/types"
	"github.com/HamiGames/Lucid-sub020/utils/log"
)

// registerSessionABI is the anchor contract fragment the client needs.
const registerSessionABI = `[{
	"name": "registerSession",
	"type": "function",
	"stateMutability": "nonpayable",
	"inputs": [
		{"name": "sessionId", "type": "string"},
		{"name": "merkleRoot", "type": "bytes32"},
		{"name": "owner", "type": "bytes32"},
		{"name": "startedAt", "type": "uint64"},
		{"name": "chunkCount", "type": "uint32"}
	],
	"outputs": []
}]`

// EthLedger implements Ledger over an Ethereum-compatible chain.
type EthLedger struct {
	client      *ethclient.Client
	contract    common.Address
	contractABI abi.ABI
	key         *ecdsa.PrivateKey
	from        common.Address
	chainID     *big.Int
}

// DialEthLedger connects the anchor contract on the given endpoint. The
// hex-encoded private key funds and signs the anchor transactions.
func DialEthLedger(ctx context.Context, endpoint, contractAddr, hexKey string) (l *EthLedger, err error) {
	client, err := ethclient.DialContext(ctx, endpoint)
	if err != nil {
		err = errors.Wrap(err, "dial ledger endpoint failed")
		return
	}

	key, err := ethcrypto.HexToECDSA(hexKey)
	if err != nil {
		err = errors.Wrap(err, "parse anchor key failed")
		return
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		err = errors.Wrap(err, "query chain id failed")
		return
	}

	parsed, err := abi.JSON(strings.NewReader(registerSessionABI))
	if err != nil {
		err = errors.Wrap(err, "parse contract abi failed")
		return
	}

	l = &EthLedger{
		client:      client,
		contract:    common.HexToAddress(contractAddr),
		contractABI: parsed,
		key:         key,
		from:        ethcrypto.PubkeyToAddress(key.PublicKey),
		chainID:     chainID,
	}

	log.WithFields(log.Fields{
		"endpoint": endpoint,
		"contract": contractAddr,
		"chain":    chainID.String(),
	}).Info("anchor ledger connected")
	return
}

// Close releases the underlying RPC client.
func (l *EthLedger) Close() {
	l.client.Close()
}

// RegisterSession packs and submits the registerSession call, with gas
// estimated against the current pending state.
func (l *EthLedger) RegisterSession(ctx context.Context, manifest *types.SessionManifest) (txID string, err error) {
	data, err := l.contractABI.Pack("registerSession",
		manifest.SessionID,
		[hash.HashSize]byte(manifest.MerkleRoot),
		[hash.HashSize]byte(hash.Hash(manifest.Owner)),
		uint64(manifest.StartedAt.Unix()),
		manifest.ChunkCount,
	)
	if err != nil {
		err = errors.Wrap(err, "pack registerSession failed")
		return
	}

	nonce, err := l.client.PendingNonceAt(ctx, l.from)
	if err != nil {
		err = errors.Wrap(err, "query pending nonce failed")
		return
	}

	gasPrice, err := l.client.SuggestGasPrice(ctx)
	if err != nil {
		err = errors.Wrap(err, "suggest gas price failed")
		return
	}

	gasLimit, err := l.client.EstimateGas(ctx, ethereum.CallMsg{
		From: l.from,
		To:   &l.contract,
		Data: data,
	})
	if err != nil {
		err = errors.Wrap(err, "estimate gas failed")
		return
	}

	tx := ethtypes.NewTx(&ethtypes.LegacyTx{
		Nonce: nonce,
		To:    &l.contract,
		// headroom over the estimate, unused gas is refunded
		Gas:      gasLimit + gasLimit/5,
		GasPrice: gasPrice,
		Data:     data,
	})

	signed, err := ethtypes.SignTx(tx, ethtypes.LatestSignerForChainID(l.chainID), l.key)
	if err != nil {
		err = errors.Wrap(err, "sign anchor transaction failed")
		return
	}

	if err = l.client.SendTransaction(ctx, signed); err != nil {
		err = errors.Wrap(err, "send anchor transaction failed")
		return
	}

	txID = signed.Hash().Hex()
	log.WithFields(log.Fields{
		"session": manifest.SessionID,
		"tx":      txID,
		"gas":     gasLimit,
	}).Debug("registerSession sent")
	return
}

// TransactionStatus looks up the receipt of a submitted transaction.
func (l *EthLedger) TransactionStatus(ctx context.Context, txID string) (status TxStatus, blockNumber uint64, err error) {
	receipt, err := l.client.TransactionReceipt(ctx, common.HexToHash(txID))
	if errors.Is(err, ethereum.NotFound) {
		return TxPending, 0, nil
	} else if err != nil {
		err = errors.Wrap(err, "query transaction receipt failed")
		return
	}

	blockNumber = receipt.BlockNumber.Uint64()
	if receipt.Status == ethtypes.ReceiptStatusSuccessful {
		status = TxConfirmed
	} else {
		status = TxRejected
	}
	return
}
