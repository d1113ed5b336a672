package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_RoundTrip(t *testing.T) {
	t.Parallel()
	codec := NewCodec(testKey, 0)

	alice, err := codec.Issue("alice")
	require.NoError(t, err)
	bob, err := codec.Issue("bob")
	require.NoError(t, err)

	name, err := codec.Verify(alice)
	require.NoError(t, err)
	assert.Equal(t, "alice", name)

	name, err = codec.Verify(bob)
	require.NoError(t, err)
	assert.Equal(t, "bob", name)
}

func TestCodec_NoExpiryByDefault(t *testing.T) {
	t.Parallel()
	codec := NewCodec(testKey, 0)

	token, err := codec.Issue("alice")
	require.NoError(t, err)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
	assert.NotEmpty(t, claims.ID)
}

func TestCodec_Tampered(t *testing.T) {
	t.Parallel()
	codec := NewCodec(testKey, 0)

	token, err := codec.Issue("alice")
	require.NoError(t, err)
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	t.Run("signature", func(t *testing.T) {
		t.Parallel()
		sig := []byte(parts[2])
		if sig[0] == 'A' {
			sig[0] = 'B'
		} else {
			sig[0] = 'A'
		}
		_, err := codec.Verify(parts[0] + "." + parts[1] + "." + string(sig))
		require.ErrorIs(t, err, ErrBadSignature)
	})

	t.Run("signature padding bits", func(t *testing.T) {
		t.Parallel()
		const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
		sig := []byte(parts[2])
		last := len(sig) - 1
		idx := strings.IndexByte(alphabet, sig[last])
		require.GreaterOrEqual(t, idx, 0)
		sig[last] = alphabet[idx^1]

		name, err := codec.Verify(parts[0] + "." + parts[1] + "." + string(sig))
		var tokenErr TokenError
		require.ErrorAs(t, err, &tokenErr)
		assert.Empty(t, name)
	})

	t.Run("payload", func(t *testing.T) {
		t.Parallel()
		forged, err := NewCodec([]byte("other key"), 0).Issue("mallory")
		require.NoError(t, err)
		payload := strings.Split(forged, ".")[1]
		_, err = codec.Verify(parts[0] + "." + payload + "." + parts[2])
		require.ErrorIs(t, err, ErrBadSignature)
	})
}

func TestCodec_Errors(t *testing.T) {
	t.Parallel()
	codec := NewCodec(testKey, 0)

	tests := []struct {
		name  string
		token func(t *testing.T) string
		want  TokenError
	}{
		{
			name:  "garbage",
			token: func(*testing.T) string { return "not-a-token" },
			want:  ErrMalformed,
		},
		{
			name:  "empty",
			token: func(*testing.T) string { return "" },
			want:  ErrMalformed,
		},
		{
			name: "wrong key",
			token: func(t *testing.T) string {
				token, err := NewCodec([]byte("another-key"), 0).Issue("alice")
				require.NoError(t, err)
				return token
			},
			want: ErrBadSignature,
		},
		{
			name: "unsigned",
			token: func(t *testing.T) string {
				token, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Name: "alice"}).
					SignedString(jwt.UnsafeAllowNoneSignatureType)
				require.NoError(t, err)
				return token
			},
			want: ErrBadSignature,
		},
		{
			name: "other hmac",
			token: func(t *testing.T) string {
				token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{Name: "alice"}).SignedString(testKey)
				require.NoError(t, err)
				return token
			},
			want: ErrBadSignature,
		},
		{
			name: "no name claim",
			token: func(t *testing.T) string {
				token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{}).SignedString(testKey)
				require.NoError(t, err)
				return token
			},
			want: ErrMalformed,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			name, err := codec.Verify(test.token(t))
			require.ErrorIs(t, err, test.want)
			assert.Empty(t, name)
		})
	}
}

func TestCodec_Expired(t *testing.T) {
	t.Parallel()

	issued := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	codec := NewCodec(testKey, time.Hour)
	codec.now = func() time.Time { return issued }

	token, err := codec.Issue("alice")
	require.NoError(t, err)

	name, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", name)

	codec.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = codec.Verify(token)
	require.ErrorIs(t, err, ErrExpired)
}

func TestCodec_TamperedSignatureAlwaysRejected(t *testing.T) {
	t.Parallel()
	codec := NewCodec(testKey, 0)

	for range 50 {
		token, err := codec.Issue("alice")
		require.NoError(t, err)
		for _, pos := range []int{len(token) - 1, strings.LastIndexByte(token, '.') + 1} {
			tampered := []byte(token)
			tampered[pos] ^= 1
			_, err = codec.Verify(string(tampered))
			require.Error(t, err, "flipped byte %d of %s", pos, token)
		}
	}
}

func TestCodec_ExpiryRequiredWithTTL(t *testing.T) {
	t.Parallel()

	legacy, err := NewCodec(testKey, 0).Issue("alice")
	require.NoError(t, err)

	codec := NewCodec(testKey, time.Hour)
	name, err := codec.Verify(legacy)
	require.ErrorIs(t, err, ErrMalformed)
	assert.Empty(t, name)

	fresh, err := codec.Issue("alice")
	require.NoError(t, err)
	name, err = codec.Verify(fresh)
	require.NoError(t, err)
	assert.Equal(t, "alice", name)
}
