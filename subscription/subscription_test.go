// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package subscription

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/solsniper/types"
)

func TestDecodeAccountDataEmpty(t *testing.T) {
	_, err := decodeAccountData(nil)
	require.Error(t, err)
}

func TestDecodeAccountDataRoundTrip(t *testing.T) {
	want := []byte{1, 2, 3, 4}
	encoded := base64.StdEncoding.EncodeToString(want)
	got, err := decodeAccountData([]string{encoded, "base64"})
	require.NoError(t, err)
	require.Equal(t, want, got)
}

type fakePoolCodec struct {
	pool types.PoolDescriptor
	err  error
}

func (f fakePoolCodec) DecodePool(accountID solana.PublicKey, data []byte) (types.PoolDescriptor, error) {
	pool := f.pool
	pool.ID = accountID
	return pool, f.err
}

func TestDecodePoolNotification(t *testing.T) {
	accountID := solana.NewWallet().PublicKey()
	raw := accountNotificationRaw(t, accountID, []byte{9, 9, 9})

	l := &Layer{poolCodec: fakePoolCodec{pool: types.PoolDescriptor{OpenTime: 5}}}
	ev, err := l.decodePoolNotification(raw)
	require.NoError(t, err)
	require.Equal(t, accountID, ev.AccountID)
	require.EqualValues(t, 5, ev.Pool.OpenTime)
}

func TestDecodePoolNotificationMalformedPubkey(t *testing.T) {
	raw := json.RawMessage(`{"value":{"pubkey":"not-base58!!","account":{"data":["AAAA","base64"]}}}`)
	l := &Layer{poolCodec: fakePoolCodec{}}
	_, err := l.decodePoolNotification(raw)
	require.Error(t, err)
}

func TestStopNoopWithoutClient(t *testing.T) {
	l := New("wss://example", nil, nil, nil, nil)
	require.False(t, l.Stop(context.Background()))
}

func accountNotificationRaw(t *testing.T, pubkey solana.PublicKey, data []byte) json.RawMessage {
	t.Helper()
	encoded := base64.StdEncoding.EncodeToString(data)
	res := programNotificationResult{Value: accountNotificationValue{Pubkey: pubkey.String()}}
	res.Value.Account.Data = []string{encoded, "base64"}
	raw, err := json.Marshal(res)
	require.NoError(t, err)
	return raw
}
