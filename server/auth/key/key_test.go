package key

import (
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKeyPairFromRSAPrivateKeyPem(t *testing.T) {
	generated, err := GenerateKeyPair()
	require.Nil(t, err)

	pemString := string(pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(generated.PrivateKey),
	}))

	keyPair, err := NewKeyPairFromRSAPrivateKeyPem(pemString)
	require.Nil(t, err)
	assert.Equal(t, KEY_ID, keyPair.Kid)
	assert.True(t, generated.PublicKey.Equal(keyPair.PublicKey))

	_, err = NewKeyPairFromRSAPrivateKeyPem("not a pem")
	assert.NotNil(t, err)
}

func TestJWKRoundTrip(t *testing.T) {
	keyPair, err := GenerateKeyPair()
	require.Nil(t, err)

	publicJWK, err := keyPair.JWK()
	require.Nil(t, err)
	assert.Equal(t, KEY_ID, publicJWK.KeyID())

	jwks := ExportJWKAsJWKS(publicJWK)
	assert.Len(t, jwks.Keys, 1)

	publicKey, err := PublicKeyFromJWK(publicJWK)
	require.Nil(t, err)
	assert.True(t, keyPair.PublicKey.Equal(publicKey))
}
