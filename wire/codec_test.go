package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValueRoundTrip(t *testing.T) {
	values := []Value{
		None(),
		String("hello"),
		Bytes([]byte{1, 2, 3}),
		Int64(-42),
		Float64(3.5),
		Bool(true),
	}

	for _, v := range values {
		req := NewPublish("t", []Value{v})
		data := EncodeRequest(req)
		got, err := DecodeRequest(data)
		require.NoError(t, err)
		require.Len(t, got.Values, 1)
		require.True(t, v.Equal(got.Values[0]))
	}
}

func TestCommandRequestRoundTrip(t *testing.T) {
	cases := []CommandRequest{
		NewHget("t1", "k"),
		NewHgetall("t1"),
		NewHmget("t1", []string{"a", "b"}),
		NewHset("t1", KvPair{Key: "k", Value: String("v")}),
		NewHmset("t1", []KvPair{{Key: "a", Value: Int64(1)}, {Key: "b", Value: Int64(2)}}),
		NewHdel("t1", "k"),
		NewHmdel("t1", []string{"a", "b"}),
		NewHexist("t1", "k"),
		NewHmexist("t1", []string{"a", "b"}),
		NewSubscribe("news"),
		NewUnsubscribe("news", 7),
		NewPublish("news", []Value{String("hi")}),
	}

	for _, req := range cases {
		data := EncodeRequest(req)
		got, err := DecodeRequest(data)
		require.NoError(t, err)
		require.Equal(t, req.Kind, got.Kind)
		require.Equal(t, req.Table, got.Table)
		require.Equal(t, req.Topic, got.Topic)
		require.Equal(t, req.Key, got.Key)
		require.Equal(t, req.Keys, got.Keys)
		require.Equal(t, req.SubscriptionID, got.SubscriptionID)
	}
}

func TestCommandResponseRoundTrip(t *testing.T) {
	resp := CommandResponse{
		Status:  200,
		Message: "",
		Values:  []Value{String("a"), None(), Int64(9)},
		Pairs:   []KvPair{{Key: "k1", Value: Bool(true)}},
	}
	data := EncodeResponse(resp)
	got, err := DecodeResponse(data)
	require.NoError(t, err)
	require.Equal(t, resp.Status, got.Status)
	require.Equal(t, resp.Message, got.Message)
	require.Len(t, got.Values, 3)
	require.Len(t, got.Pairs, 1)
}

func TestDecodeRequestRejectsTruncatedData(t *testing.T) {
	req := NewHset("t1", KvPair{Key: "k", Value: String("v")})
	data := EncodeRequest(req)
	_, err := DecodeRequest(data[:len(data)-2])
	require.Error(t, err)
}
