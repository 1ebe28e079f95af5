package bytecode

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	nxerrors "github.com/nexuslang/nexus/internal/errors"
)

// ModuleSignatureError is raised when a module's signature does not match
// its contents, or was produced with a key the verifier does not recognise.
type ModuleSignatureError struct {
	Message string
}

func (e *ModuleSignatureError) Error() string { return e.Message }

func (e *ModuleSignatureError) Diagnostic() *nxerrors.Diagnostic {
	return nxerrors.New(nxerrors.KindModuleSignature, e.Message, nxerrors.Position{})
}

type moduleClaims struct {
	ContentHash string `json:"content_hash"`
	jwt.RegisteredClaims
}

// Sign computes an HS256 JWT over moduleBytes' SHA-256 hash and returns it
// as a string. `compile --sign` prints the token; it is not written into the
// module's metadata trailer.
func Sign(moduleBytes []byte, key []byte) (string, error) {
	hash := sha256.Sum256(moduleBytes)
	claims := moduleClaims{
		ContentHash: hex.EncodeToString(hash[:]),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Unix(0, 0)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// Verify checks that signature was produced over moduleBytes by the holder
// of key, failing closed with ModuleSignatureError on any mismatch.
func Verify(moduleBytes []byte, signature string, key []byte) error {
	token, err := jwt.ParseWithClaims(signature, &moduleClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return &ModuleSignatureError{Message: "invalid signature: " + err.Error()}
	}
	claims, ok := token.Claims.(*moduleClaims)
	if !ok || !token.Valid {
		return &ModuleSignatureError{Message: "signature token is not valid"}
	}

	hash := sha256.Sum256(moduleBytes)
	if claims.ContentHash != hex.EncodeToString(hash[:]) {
		return &ModuleSignatureError{Message: "signature does not match module contents"}
	}
	return nil
}
