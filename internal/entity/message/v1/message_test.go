package message_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/signage-toolkit/gateway/internal/entity/message/v1"
)

func TestDecodeType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		frame   string
		want    message.Type
		wantErr error
	}{
		{name: "announce", frame: `{"type":"announce","display_info":{"name":"lobby"}}`, want: message.TypeAnnounce},
		{name: "claim code", frame: `{"type":"claim_code","code":"AB23CD"}`, want: message.TypeClaimCode},
		{name: "unknown type passes through", frame: `{"type":"future_thing"}`, want: message.Type("future_thing")},
		{name: "missing discriminator", frame: `{"code":"AB23CD"}`, wantErr: message.ErrMissingType},
		{name: "empty discriminator", frame: `{"type":""}`, wantErr: message.ErrMissingType},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := message.DecodeType([]byte(tc.frame))

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)

				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeTypeMalformedJSON(t *testing.T) {
	t.Parallel()

	_, err := message.DecodeType([]byte(`{"type":`))
	require.Error(t, err)
}

func TestTypedDecode(t *testing.T) {
	t.Parallel()

	frame, err := message.Encode(message.Announce{
		Type: message.TypeAnnounce,
		Display: message.DisplayInfo{
			Name:            "lobby",
			Model:           "SG-55",
			SoftwareVersion: "2.4.1",
		},
	})
	require.NoError(t, err)

	decoded, err := message.Decode[message.Announce](frame)
	require.NoError(t, err)
	require.Equal(t, "lobby", decoded.Display.Name)
	require.Equal(t, "SG-55", decoded.Display.Model)
}

func TestDecodeIgnoresUnknownFields(t *testing.T) {
	t.Parallel()

	// Newer clients may send fields this gateway does not know about yet.
	frame := []byte(`{"type":"reconnect","token":"tok","future_field":true}`)

	decoded, err := message.Decode[message.Reconnect](frame)
	require.NoError(t, err)
	require.Equal(t, "tok", decoded.Token)
}
