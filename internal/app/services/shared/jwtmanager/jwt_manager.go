package jwtmanager

import (
	"context"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"
	"time"

	"screener-service/internal/app/config"
	"screener-service/internal/pkg/constvars"
	"screener-service/internal/pkg/exceptions"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

const (
	AlgES256 = "ES256"
	AlgRS256 = "RS256"

	defaultTTL = 5 * time.Minute
	issuer     = "screener-service"
)

// SubmissionClaims identify one submission delivery to the collector.
type SubmissionClaims struct {
	FormType  string `json:"form_type,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	jwt.RegisteredClaims
}

// JWTManager signs the bearer tokens sent with collector requests.
type JWTManager struct {
	log    *zap.Logger
	alg    string
	ttl    time.Duration
	method jwt.SigningMethod
	key    interface{}
	public interface{}
	now    func() time.Time
}

type CreateTokenInput struct {
	Subject   string
	MessageID string
	FormType  string
	SessionID string
}

type CreateTokenOutput struct {
	Token     string
	ExpiresAt time.Time
}

// NewJWTManager loads the PEM private key of cfg.Webhook. The algorithm
// defaults to ES256.
func NewJWTManager(cfg *config.InternalConfig, log *zap.Logger) (*JWTManager, error) {
	return New(cfg.Webhook.JWTAlg, cfg.Webhook.JWTHookKey, defaultTTL, log)
}

func New(alg, pemKey string, ttl time.Duration, log *zap.Logger) (*JWTManager, error) {
	alg = strings.ToUpper(strings.TrimSpace(alg))
	if alg == "" {
		alg = AlgES256
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}

	pemKey = strings.TrimSpace(strings.ReplaceAll(pemKey, `\n`, "\n"))
	if pemKey == "" {
		return nil, errors.New("jwt hook key is empty")
	}
	block, _ := pem.Decode([]byte(pemKey))
	if block == nil {
		return nil, errors.New("failed to decode PEM for jwt hook key")
	}

	jm := &JWTManager{log: log, alg: alg, ttl: ttl, now: time.Now}
	switch alg {
	case AlgES256:
		ecKey, err := parseECPrivateKey(block)
		if err != nil {
			return nil, err
		}
		jm.method, jm.key, jm.public = jwt.SigningMethodES256, ecKey, &ecKey.PublicKey
	case AlgRS256:
		rsaKey, err := parseRSAPrivateKey(block)
		if err != nil {
			return nil, err
		}
		jm.method, jm.key, jm.public = jwt.SigningMethodRS256, rsaKey, &rsaKey.PublicKey
	default:
		return nil, fmt.Errorf("unsupported JWT algorithm: %s", alg)
	}
	return jm, nil
}

// CreateToken signs a short-lived token for one submission.
func (j *JWTManager) CreateToken(ctx context.Context, in *CreateTokenInput) (*CreateTokenOutput, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	j.log.Debug("JWTManager.CreateToken called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingMessageIDKey, in.MessageID),
	)

	if strings.TrimSpace(in.Subject) == "" {
		return nil, exceptions.ErrSigningToken(errors.New("subject is required"))
	}

	now := j.now().UTC()
	expiresAt := now.Add(j.ttl)
	claims := SubmissionClaims{
		FormType:  in.FormType,
		SessionID: in.SessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   in.Subject,
			ID:        in.MessageID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(j.method, claims).SignedString(j.key)
	if err != nil {
		return nil, exceptions.ErrSigningToken(err)
	}
	return &CreateTokenOutput{Token: signed, ExpiresAt: expiresAt}, nil
}

// VerifyToken checks signature, algorithm and expiry of a token issued by
// this manager.
func (j *JWTManager) VerifyToken(token string) (*SubmissionClaims, error) {
	claims := &SubmissionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != j.alg {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return j.public, nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func parseECPrivateKey(block *pem.Block) (*ecdsa.PrivateKey, error) {
	switch block.Type {
	case "EC PRIVATE KEY":
		key, err := x509.ParseECPrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse EC private key: %w", err)
		}
		return key, nil
	case "PRIVATE KEY":
		keyAny, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse PKCS8 private key: %w", err)
		}
		if ec, ok := keyAny.(*ecdsa.PrivateKey); ok {
			return ec, nil
		}
		return nil, errors.New("PKCS8 key is not ECDSA")
	}
	return nil, fmt.Errorf("unsupported EC PEM type: %s", block.Type)
}

func parseRSAPrivateKey(block *pem.Block) (*rsa.PrivateKey, error) {
	switch block.Type {
	case "RSA PRIVATE KEY":
		key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse PKCS1 private key: %w", err)
		}
		return key, nil
	case "PRIVATE KEY":
		keyAny, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse PKCS8 private key: %w", err)
		}
		if rsaKey, ok := keyAny.(*rsa.PrivateKey); ok {
			return rsaKey, nil
		}
		return nil, errors.New("PKCS8 key is not RSA")
	}
	return nil, fmt.Errorf("unsupported RSA PEM type: %s", block.Type)
}
