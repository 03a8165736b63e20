package crypto_test

import (
	"encoding/base64"
	"fmt"
	"strings"
	"testing"
	"time"

	"coldroom/crypto"
	"coldroom/domain"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	manager := crypto.NewJWTManager("supersupersecretkey don't share it with anyone", time.Hour)
	now := time.Now()
	token, _ := manager.Generate("123-456-789", now)

	tokenParts := strings.Split(token, ".")
	jwtHead, _ := base64.RawURLEncoding.DecodeString(tokenParts[0])
	jwtBody, _ := base64.RawURLEncoding.DecodeString(tokenParts[1])
	jwtSignature, _ := base64.RawURLEncoding.DecodeString(tokenParts[2])

	assert.JSONEq(t, `{"alg": "HS256","typ": "JWT"}`, string(jwtHead))
	assert.JSONEq(t, fmt.Sprintf(`{"id": "123-456-789","exp": %d }`, now.Add(time.Hour).Unix()), string(jwtBody))
	assert.Len(t, jwtSignature, 256/8, "256 bits of sha256")
}

func TestVerify(t *testing.T) {
	manager := crypto.NewJWTManager("supersupersecretkey don't share it with anyone", 2*time.Hour)

	now := time.Now()
	oneHourAgo := now.Add(-time.Hour)
	threeHoursAgo := now.Add(-3 * time.Hour)

	token, _ := manager.Generate("idid", threeHoursAgo)

	_, err := manager.Verify(token)
	assert.ErrorIs(t, err, domain.ErrExpiredToken)

	token, _ = manager.Generate("idid", oneHourAgo)
	id, err := manager.Verify(token)

	assert.NoError(t, err)
	assert.Equal(t, "idid", id)

	_, err = manager.Verify(token + "lol")
	assert.ErrorIs(t, err, domain.ErrInvalidTokenSignature)

	tokenNonHS256Alg := "eyJhbGciOiJFUzUxMiIsInR5cCI6IkpXVCJ9" + "." + strings.Split(token, ".")[1] + "." + strings.Split(token, ".")[2]
	_, err = manager.Verify(tokenNonHS256Alg)
	assert.ErrorIs(t, err, domain.ErrInvalidSigningAlg)

	tokenNoneAlg := "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0" + "." + strings.Split(token, ".")[1] + "."
	_, err = manager.Verify(tokenNoneAlg)
	assert.ErrorIs(t, err, domain.ErrInvalidSigningAlg)

	_, err = manager.Verify("stemretmretm")
	assert.ErrorIs(t, err, domain.ErrCorruptedToken)
}
