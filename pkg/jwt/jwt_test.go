package jwt_test

import (
	"testing"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/Logistica-api/pkg/jwt"
)

const (
	testSecret = "test-secret-key-for-unit-tests"
	testIssuer = "logistica-test"
)

var testSubject = pkgjwt.Subject{
	UserID:    "00000000-0000-0000-0000-000000000001",
	CompanyID: "00000000-0000-0000-0000-000000000002",
	DepotID:   "00000000-0000-0000-0000-000000000003",
	Role:      "responsable_depot",
}

func TestGenerateAndParse_ConservaClaims(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, testSubject, testIssuer, 60)
	require.NoError(t, err)

	claims, err := pkgjwt.Parse(testSecret, testIssuer, tok)
	require.NoError(t, err)

	assert.Equal(t, testSubject.UserID, claims.UserID)
	assert.Equal(t, testSubject.CompanyID, claims.CompanyID)
	assert.Equal(t, testSubject.DepotID, claims.DepotID)
	assert.Equal(t, testSubject.Role, claims.Role)
	assert.NotEmpty(t, claims.ID, "cada token debe llevar jti")
}

func TestGenerate_JTIUnicoPorToken(t *testing.T) {
	a, err := pkgjwt.Generate(testSecret, testSubject, testIssuer, 60)
	require.NoError(t, err)
	b, err := pkgjwt.Generate(testSecret, testSubject, testIssuer, 60)
	require.NoError(t, err)

	ca, err := pkgjwt.Parse(testSecret, testIssuer, a)
	require.NoError(t, err)
	cb, err := pkgjwt.Parse(testSecret, testIssuer, b)
	require.NoError(t, err)
	assert.NotEqual(t, ca.ID, cb.ID)
}

func TestParse_TokenExpirado(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, testSubject, testIssuer, -1)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(testSecret, testIssuer, tok)
	assert.Error(t, err)
}

func TestParse_SecretIncorrecto(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, testSubject, testIssuer, 60)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro-secret-completamente-distinto", testIssuer, tok)
	assert.Error(t, err)
}

func TestParse_EmisorDistinto(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, testSubject, "otro-emisor", 60)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(testSecret, testIssuer, tok)
	assert.Error(t, err)
}

func TestParse_AlgoritmoNone(t *testing.T) {
	claims := pkgjwt.Claims{UserID: testSubject.UserID, Role: "super_admin"}
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, claims).SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(testSecret, "", tok)
	assert.Error(t, err)
}

func TestGenerate_SinSecret(t *testing.T) {
	_, err := pkgjwt.Generate("", testSubject, testIssuer, 60)
	assert.Error(t, err)
}
