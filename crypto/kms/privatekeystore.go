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

package kms

import (
	"bytes"
	"os"

	"github.com/pkg/errors"

	"github.com/HamiGames/Lucid-sub020/crypto/asymmetric"
	"github.com/HamiGames/Lucid-sub020/crypto/hash"
	"github.com/HamiGames/Lucid-sub020/crypto/symmetric"
	"github.com/HamiGames/Lucid-sub020/utils/log"
)

// keyFileSalt is mixed into the master key derivation of the on-disk key
// file. It is not a secret, it only separates the key file cipher from
// other uses of the password cipher.
var keyFileSalt = []byte("lucid-node-key-v1")

// LoadPrivateKey loads the private key from the encrypted key file.
//
// The decrypted layout is DoubleHash(key) || serialized key, the hash at
// the head is checked before the key is parsed so a wrong master key is
// reported as ErrHashNotMatch instead of a garbage key.
func LoadPrivateKey(keyFilePath string, masterKey []byte) (key *asymmetric.PrivateKey, err error) {
	var fileContent []byte
	if fileContent, err = os.ReadFile(keyFilePath); err != nil {
		log.WithField("path", keyFilePath).WithError(err).Error("read key file failed")
		return
	}

	var decData []byte
	if decData, err = symmetric.DecryptWithPassword(fileContent, masterKey, keyFileSalt); err != nil {
		log.WithField("path", keyFilePath).WithError(err).Error("decrypt key file failed")
		return
	}

	// sanity check
	if len(decData) != hash.HashSize+asymmetric.PrivateKeyBytesLen {
		err = ErrNotKeyFile
		log.WithField("path", keyFilePath).Error(err.Error())
		return
	}

	computedHash := hash.DoubleHashB(decData[hash.HashSize:])
	if !bytes.Equal(computedHash, decData[:hash.HashSize]) {
		err = ErrHashNotMatch
		log.WithField("path", keyFilePath).Error(err.Error())
		return
	}

	key, _ = asymmetric.PrivKeyFromBytes(decData[hash.HashSize:])

	return
}

// SavePrivateKey saves the private key into the encrypted key file,
// ensure the path is not reachable by an adversary.
func SavePrivateKey(keyFilePath string, key *asymmetric.PrivateKey, masterKey []byte) (err error) {
	serializedKey := key.Serialize()
	keyHash := hash.DoubleHashB(serializedKey)
	rawData := append(keyHash, serializedKey...)

	var encKey []byte
	if encKey, err = symmetric.EncryptWithPassword(rawData, masterKey, keyFileSalt); err != nil {
		return
	}

	return os.WriteFile(keyFilePath, encKey, 0600)
}

// InitLocalKeyPair loads the local key pair from the key file, generating
// and persisting a fresh pair when the file does not exist yet.
func InitLocalKeyPair(privateKeyPath string, masterKey []byte) (err error) {
	var privateKey *asymmetric.PrivateKey
	var publicKey *asymmetric.PublicKey
	initLocalKeyStore()

	privateKey, err = LoadPrivateKey(privateKeyPath, masterKey)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			if errors.Is(err, ErrNotKeyFile) || errors.Is(err, ErrHashNotMatch) {
				log.WithField("path", privateKeyPath).WithError(err).Error("load local private key failed")
			}
			return
		}

		log.Info("no private key found, generating one")
		privateKey, publicKey, err = asymmetric.GenSecp256k1KeyPair()
		if err != nil {
			log.WithError(err).Error("generate key pair failed")
			return
		}

		log.WithField("path", privateKeyPath).Info("saving new private key")
		if err = SavePrivateKey(privateKeyPath, privateKey, masterKey); err != nil {
			log.WithError(err).Error("save private key failed")
			return
		}
	}

	if publicKey == nil {
		publicKey = privateKey.PubKey()
	}
	SetLocalKeyPair(privateKey, publicKey)

	return
}
