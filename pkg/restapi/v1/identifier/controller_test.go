/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package identifier_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/trustbloc/did-ledger/pkg/auth"
	"github.com/trustbloc/did-ledger/pkg/doc/did"
	"github.com/trustbloc/did-ledger/pkg/keypair"
	"github.com/trustbloc/did-ledger/pkg/kms"
	"github.com/trustbloc/did-ledger/pkg/restapi/resterr"
	"github.com/trustbloc/did-ledger/pkg/restapi/v1/identifier"
	"github.com/trustbloc/did-ledger/pkg/restapi/v1/mw"
	identifiersvc "github.com/trustbloc/did-ledger/pkg/service/identifier"
)

const testDID = "did:ledger:ledger.example.com:abc"

var alice = auth.NewIdentity("alice", "member_cert")

type errorResponse struct {
	Error struct {
		Code           string        `json:"code"`
		Message        string        `json:"message"`
		Authentication auth.Identity `json:"authentication"`
	} `json:"error"`
}

func newServer(t *testing.T) (*echo.Echo, *MockIdentifierService) {
	t.Helper()

	svc := NewMockIdentifierService(gomock.NewController(t))

	e := echo.New()
	e.HTTPErrorHandler = resterr.HTTPErrorHandler
	e.Use(mw.CallerIdentity())

	identifier.RegisterHandlers(e, identifier.NewController(&identifier.Config{Service: svc}))

	return e, svc
}

func serve(e *echo.Echo, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(mw.CallerIdentityHeader, alice.Identifier)
	req.Header.Set(mw.CallerPolicyHeader, alice.Policy)

	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}

	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	return resp
}

func TestController_PostIdentifiers(t *testing.T) {
	t.Run("201 Created", func(t *testing.T) {
		e, svc := newServer(t)

		svc.EXPECT().Create(gomock.Any(), alice, &identifiersvc.CreateRequest{
			Algorithm: kms.ECDSA,
			Curve:     kms.Secp256k1,
			Domain:    "ledger.example.com",
		}).Times(1).Return(did.NewDocument(testDID, ""), nil)

		rec := serve(e, http.MethodPost, "/identifiers?alg=ECDSA&curve=secp256k1&domain=ledger.example.com", nil, "")

		require.Equal(t, http.StatusCreated, rec.Code)
		require.Contains(t, rec.Body.String(), testDID)
	})

	t.Run("defaults", func(t *testing.T) {
		e, svc := newServer(t)

		svc.EXPECT().Create(gomock.Any(), alice, &identifiersvc.CreateRequest{}).
			Times(1).Return(did.NewDocument(testDID, ""), nil)

		rec := serve(e, http.MethodPost, "/identifiers", nil, "")

		require.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("RSA with size", func(t *testing.T) {
		e, svc := newServer(t)

		svc.EXPECT().Create(gomock.Any(), alice, &identifiersvc.CreateRequest{Algorithm: kms.RSA, Size: 3072}).
			Times(1).Return(did.NewDocument(testDID, ""), nil)

		rec := serve(e, http.MethodPost, "/identifiers?alg=RSASSA_PKCS1-v1_5&size=3072", nil, "")

		require.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("invalid query parameters", func(t *testing.T) {
		for _, query := range []string{"alg=DSA", "size=abc", "size=-1", "size=1048576", "curve=ed448"} {
			t.Run(query, func(t *testing.T) {
				e, _ := newServer(t)

				rec := serve(e, http.MethodPost, "/identifiers?"+query, nil, "")

				require.Equal(t, http.StatusBadRequest, rec.Code)
				require.Equal(t, string(resterr.InvalidValue), decodeError(t, rec).Error.Code)
			})
		}
	})

	t.Run("domain not found", func(t *testing.T) {
		e, svc := newServer(t)

		svc.EXPECT().Create(gomock.Any(), alice, gomock.Any()).
			Times(1).Return(nil, resterr.NewDomainNotFound(alice, "unknown.example.com"))

		rec := serve(e, http.MethodPost, "/identifiers?domain=unknown.example.com", nil, "")

		require.Equal(t, http.StatusNotFound, rec.Code)

		resp := decodeError(t, rec)
		require.Equal(t, string(resterr.DomainNotFound), resp.Error.Code)
		require.Equal(t, alice, resp.Error.Authentication)
	})
}

func TestController_Count(t *testing.T) {
	e, svc := newServer(t)

	svc.EXPECT().Count(gomock.Any()).Times(1).Return(int64(3), nil)

	rec := serve(e, http.MethodGet, "/identifiers/count", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "3", strings.TrimSpace(rec.Body.String()))
}

func TestController_GetIdentifier(t *testing.T) {
	t.Run("200 OK", func(t *testing.T) {
		e, svc := newServer(t)

		svc.EXPECT().Resolve(gomock.Any(), alice, testDID).Times(1).Return(did.NewDocument(testDID, ""), nil)

		rec := serve(e, http.MethodGet, "/identifiers/"+testDID, nil, "")

		require.Equal(t, http.StatusOK, rec.Code)

		var doc did.Document
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
		require.Equal(t, testDID, doc.ID)
	})

	t.Run("escaped identifier", func(t *testing.T) {
		e, svc := newServer(t)

		svc.EXPECT().Resolve(gomock.Any(), alice, testDID).Times(1).Return(did.NewDocument(testDID, ""), nil)

		rec := serve(e, http.MethodGet, "/identifiers/did%3Aledger%3Aledger.example.com%3Aabc", nil, "")

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("404 Not Found", func(t *testing.T) {
		e, svc := newServer(t)

		svc.EXPECT().Resolve(gomock.Any(), alice, testDID).Times(1).
			Return(nil, resterr.NewIdentifierNotFound(alice, testDID))

		rec := serve(e, http.MethodGet, "/identifiers/"+testDID, nil, "")

		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, string(resterr.IdentifierNotFound), decodeError(t, rec).Error.Code)
	})

	t.Run("500 on unexpected error", func(t *testing.T) {
		e, svc := newServer(t)

		svc.EXPECT().Resolve(gomock.Any(), alice, testDID).Times(1).Return(nil, errors.New("store unavailable"))

		rec := serve(e, http.MethodGet, "/identifiers/"+testDID, nil, "")

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Contains(t, rec.Body.String(), "store unavailable")
	})
}

func TestController_DeleteIdentifier(t *testing.T) {
	t.Run("200 OK", func(t *testing.T) {
		e, svc := newServer(t)

		svc.EXPECT().Deactivate(gomock.Any(), alice, testDID).Times(1).Return(nil)

		rec := serve(e, http.MethodDelete, "/identifiers/"+testDID, nil, "")

		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, rec.Body.String())
	})

	t.Run("invalid controller", func(t *testing.T) {
		e, svc := newServer(t)

		svc.EXPECT().Deactivate(gomock.Any(), alice, testDID).Times(1).
			Return(resterr.NewInvalidController(alice, testDID))

		rec := serve(e, http.MethodDelete, "/identifiers/"+testDID, nil, "")

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, string(resterr.InvalidController), decodeError(t, rec).Error.Code)
	})
}

func TestController_Keys(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		e, svc := newServer(t)

		svc.EXPECT().ListKeys(gomock.Any(), alice, testDID).Times(1).Return([]keypair.KeyPair{
			{ID: "#k1", Algorithm: kms.EdDSA, Use: keypair.Signing, State: keypair.Current, PublicKey: "pub"},
		}, nil)

		rec := serve(e, http.MethodGet, "/identifiers/"+testDID+"/keys", nil, "")

		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Keys []keypair.KeyPair `json:"keys"`
		}

		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Keys, 1)
		require.Equal(t, "#k1", resp.Keys[0].ID)
	})

	t.Run("export with escaped fragment", func(t *testing.T) {
		e, svc := newServer(t)

		svc.EXPECT().ExportKey(gomock.Any(), alice, testDID, "#k1").Times(1).Return(&identifiersvc.ExportedKey{
			KeyPair: &keypair.KeyPair{ID: "#k1", PrivateKey: "priv"},
			JWK:     map[string]interface{}{"kty": "OKP", "kid": "#k1"},
		}, nil)

		rec := serve(e, http.MethodGet, "/identifiers/"+testDID+"/keys/%23k1", nil, "")

		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "priv", resp["privateKey"])
		require.Equal(t, "OKP", resp["jwk"].(map[string]interface{})["kty"])
	})

	t.Run("export unknown key", func(t *testing.T) {
		e, svc := newServer(t)

		svc.EXPECT().ExportKey(gomock.Any(), alice, testDID, "#nope").Times(1).
			Return(nil, resterr.NewKeyNotFound(alice, testDID, "#nope"))

		rec := serve(e, http.MethodGet, "/identifiers/"+testDID+"/keys/%23nope", nil, "")

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, string(resterr.KeyNotFound), decodeError(t, rec).Error.Code)
	})

	t.Run("revoke", func(t *testing.T) {
		e, svc := newServer(t)

		svc.EXPECT().RevokeKey(gomock.Any(), alice, testDID, "#k1").Times(1).Return(did.NewDocument(testDID, ""), nil)

		rec := serve(e, http.MethodPatch, "/identifiers/"+testDID+"/keys/%23k1/revoke", nil, "")

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("roll with defaults", func(t *testing.T) {
		e, svc := newServer(t)

		svc.EXPECT().RollKey(gomock.Any(), alice, testDID, &identifiersvc.RollOptions{Use: keypair.Signing}).
			Times(1).Return(did.NewDocument(testDID, ""), nil)

		rec := serve(e, http.MethodPatch, "/identifiers/"+testDID+"/keys/roll", nil, "")

		require.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("roll encryption key with overrides", func(t *testing.T) {
		e, svc := newServer(t)

		svc.EXPECT().RollKey(gomock.Any(), alice, testDID, &identifiersvc.RollOptions{
			Use:       keypair.Encryption,
			Algorithm: kms.ECDSA,
			Curve:     kms.Secp384r1,
		}).Times(1).Return(did.NewDocument(testDID, ""), nil)

		rec := serve(e, http.MethodPatch, "/identifiers/"+testDID+"/keys/roll?use=enc&alg=ECDSA&curve=secp384r1", nil, "")

		require.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("roll with invalid use", func(t *testing.T) {
		e, _ := newServer(t)

		rec := serve(e, http.MethodPatch, "/identifiers/"+testDID+"/keys/roll?use=auth", nil, "")

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, string(resterr.InvalidValue), decodeError(t, rec).Error.Code)
	})

	t.Run("roll without key", func(t *testing.T) {
		e, svc := newServer(t)

		svc.EXPECT().RollKey(gomock.Any(), alice, testDID, gomock.Any()).Times(1).
			Return(nil, resterr.NewKeyNotConfigured(alice, testDID, string(keypair.Signing)))

		rec := serve(e, http.MethodPatch, "/identifiers/"+testDID+"/keys/roll", nil, "")

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Equal(t, string(resterr.KeyNotConfigured), decodeError(t, rec).Error.Code)
	})
}

func TestController_SignVerify(t *testing.T) {
	t.Run("sign text body", func(t *testing.T) {
		e, svc := newServer(t)

		svc.EXPECT().Sign(gomock.Any(), alice, testDID, []byte("hello ledger")).Times(1).
			Return(&identifiersvc.Signature{
				Signature:     "c2ln",
				Algorithm:     kms.SigningAlgorithm{Name: kms.EdDSA, Hash: kms.SHA256},
				KeyIdentifier: "#k1",
			}, nil)

		rec := serve(e, http.MethodPost, "/identifiers/"+testDID+"/sign",
			strings.NewReader("hello ledger"), echo.MIMETextPlain)

		require.Equal(t, http.StatusOK, rec.Code)

		var sig identifiersvc.Signature
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sig))
		require.Equal(t, "c2ln", sig.Signature)
		require.Equal(t, "#k1", sig.KeyIdentifier)
	})

	t.Run("sign without payload", func(t *testing.T) {
		e, svc := newServer(t)

		svc.EXPECT().Sign(gomock.Any(), alice, testDID, []byte{}).Times(1).
			Return(nil, resterr.NewPayloadNotProvided(alice))

		rec := serve(e, http.MethodPost, "/identifiers/"+testDID+"/sign", nil, echo.MIMETextPlain)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, string(resterr.PayloadNotProvided), decodeError(t, rec).Error.Code)
	})

	t.Run("verify", func(t *testing.T) {
		e, svc := newServer(t)

		svc.EXPECT().Verify(gomock.Any(), alice, testDID, &identifiersvc.VerifyRequest{
			Signature:     "c2ln",
			Payload:       "hello ledger",
			Signer:        testDID,
			KeyIdentifier: "#k0",
		}).Times(1).Return(true, nil)

		rec := serve(e, http.MethodPost, "/identifiers/"+testDID+"/verify",
			strings.NewReader(`{"signature":"c2ln","payload":"hello ledger","signer":"`+testDID+`","keyIdentifier":"#k0"}`),
			echo.MIMEApplicationJSON)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "true", strings.TrimSpace(rec.Body.String()))
	})

	t.Run("verify with malformed body", func(t *testing.T) {
		e, _ := newServer(t)

		rec := serve(e, http.MethodPost, "/identifiers/"+testDID+"/verify",
			strings.NewReader(`{"signature":`), echo.MIMEApplicationJSON)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, string(resterr.InvalidValue), decodeError(t, rec).Error.Code)
	})
}

func TestController_Services(t *testing.T) {
	t.Run("add", func(t *testing.T) {
		e, svc := newServer(t)

		svc.EXPECT().AddService(gomock.Any(), alice, testDID, &did.Service{
			ID:              "#ld",
			Type:            "LinkedDomains",
			ServiceEndpoint: did.ServiceEndpoint{URI: "https://example.com"},
		}).Times(1).Return(did.NewDocument(testDID, ""), nil)

		rec := serve(e, http.MethodPost, "/identifiers/"+testDID+"/services",
			strings.NewReader(`{"id":"#ld","type":"LinkedDomains","serviceEndpoint":"https://example.com"}`),
			echo.MIMEApplicationJSON)

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("add with endpoint object", func(t *testing.T) {
		e, svc := newServer(t)

		svc.EXPECT().AddService(gomock.Any(), alice, testDID, &did.Service{
			ID:   "#hub",
			Type: "IdentityHub",
			ServiceEndpoint: did.ServiceEndpoint{
				Properties: map[string]interface{}{"nodes": []interface{}{"https://hub.example.com"}},
			},
		}).Times(1).Return(did.NewDocument(testDID, ""), nil)

		rec := serve(e, http.MethodPost, "/identifiers/"+testDID+"/services",
			strings.NewReader(`{"id":"#hub","type":"IdentityHub","serviceEndpoint":{"nodes":["https://hub.example.com"]}}`),
			echo.MIMEApplicationJSON)

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("wrongly typed properties reach validation", func(t *testing.T) {
		e, svc := newServer(t)

		svc.EXPECT().AddService(gomock.Any(), alice, testDID, &did.Service{Type: "LinkedDomains"}).
			Times(1).Return(nil, resterr.NewInvalidServiceProperty(alice, "id"))

		rec := serve(e, http.MethodPost, "/identifiers/"+testDID+"/services",
			strings.NewReader(`{"id":5,"type":"LinkedDomains","serviceEndpoint":7}`),
			echo.MIMEApplicationJSON)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, string(resterr.InvalidService), decodeError(t, rec).Error.Code)
	})

	t.Run("empty body", func(t *testing.T) {
		e, svc := newServer(t)

		svc.EXPECT().AddService(gomock.Any(), alice, testDID, nil).Times(1).
			Return(nil, resterr.NewServiceNotProvided(alice))

		rec := serve(e, http.MethodPost, "/identifiers/"+testDID+"/services", nil, echo.MIMEApplicationJSON)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, string(resterr.ServiceNotProvided), decodeError(t, rec).Error.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		for _, body := range []string{`{"id":`, `["#ld"]`} {
			e, _ := newServer(t)

			rec := serve(e, http.MethodPost, "/identifiers/"+testDID+"/services",
				strings.NewReader(body), echo.MIMEApplicationJSON)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Equal(t, string(resterr.InvalidValue), decodeError(t, rec).Error.Code)
		}
	})

	t.Run("remove", func(t *testing.T) {
		e, svc := newServer(t)

		svc.EXPECT().RemoveService(gomock.Any(), alice, testDID, "#ld").Times(1).
			Return(did.NewDocument(testDID, ""), nil)

		rec := serve(e, http.MethodDelete, "/identifiers/"+testDID+"/services/%23ld", nil, "")

		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestController_AnonymousCaller(t *testing.T) {
	e, svc := newServer(t)

	svc.EXPECT().Create(gomock.Any(), auth.Anonymous(), gomock.Any()).Times(1).
		Return(nil, resterr.NewInvalidController(auth.Anonymous(), ""))

	req := httptest.NewRequest(http.MethodPost, "/identifiers", nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeError(t, rec)
	require.Equal(t, string(resterr.InvalidController), resp.Error.Code)
	require.Equal(t, auth.Unauthenticated, resp.Error.Authentication.Identifier)
}
