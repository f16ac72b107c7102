// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	solrpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/require"
)

func TestMintFromTxNilOrEmpty(t *testing.T) {
	require.Equal(t, "", mintFromTx(nil))
	require.Equal(t, "", mintFromTx(&solana.Transaction{}))
}

func TestMintFromTxFirstAccountKey(t *testing.T) {
	key := solana.NewWallet().PublicKey()
	tx := &solana.Transaction{}
	tx.Message.AccountKeys = []solana.PublicKey{key}

	require.Equal(t, key.String(), mintFromTx(tx))
}

func TestSimulationLogsFromNonRPCError(t *testing.T) {
	require.Nil(t, simulationLogsFrom(nil))
	require.Nil(t, simulationLogsFrom(errPlain("boom")))
}

func TestSimulationLogsFromRPCError(t *testing.T) {
	rpcErr := &solrpc.JsonRpcError{
		Data: map[string]any{
			"logs": []any{"Program log: A", "Program log: B", 42},
		},
	}

	logs := simulationLogsFrom(rpcErr)
	require.Equal(t, []string{"Program log: A", "Program log: B"}, logs)
}

func TestSimulationLogsFromRPCErrorWithoutLogs(t *testing.T) {
	rpcErr := &solrpc.JsonRpcError{}
	require.Nil(t, simulationLogsFrom(rpcErr))
}

type errPlain string

func (e errPlain) Error() string { return string(e) }
