// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package walletkit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func TestLoadNeitherConfigured(t *testing.T) {
	_, err := Load("", "")
	require.ErrorIs(t, err, ErrWalletNotConfigured)
}

func TestLoadBase58(t *testing.T) {
	want := solana.NewWallet().PrivateKey
	key, err := Load("", want.String())
	require.NoError(t, err)
	require.Equal(t, []byte(want), []byte(key))
}

// keypairJSON renders key the way the Solana CLI writes a keypair file: a
// JSON array of integers, not a base64 string.
func keypairJSON(t *testing.T, key []byte) []byte {
	t.Helper()
	values := make([]int, len(key))
	for i, b := range key {
		values[i] = int(b)
	}
	raw, err := json.Marshal(values)
	require.NoError(t, err)
	return raw
}

func TestLoadFromFile(t *testing.T) {
	want := solana.NewWallet().PrivateKey

	path := filepath.Join(t.TempDir(), "wallet.json")
	require.NoError(t, os.WriteFile(path, keypairJSON(t, want), 0o600))

	key, err := Load(path, "")
	require.NoError(t, err)
	require.Equal(t, []byte(want), []byte(key))
}

func TestLoadFromFileWrongLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.json")
	require.NoError(t, os.WriteFile(path, keypairJSON(t, []byte{1, 2, 3}), 0o600))

	_, err := Load(path, "")
	require.Error(t, err)
}

func TestLoadBase58TakesPrecedenceOverPath(t *testing.T) {
	want := solana.NewWallet().PrivateKey
	key, err := Load("/nonexistent/path.json", want.String())
	require.NoError(t, err)
	require.Equal(t, []byte(want), []byte(key))
}
