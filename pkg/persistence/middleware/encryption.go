package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/chatdialog/pkg/domain"
	"github.com/aretw0/chatdialog/pkg/ports"
)

// envelopeKey holds the ciphertext inside an envelope context.
const envelopeKey = "__encrypted__"

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	ports.Storage
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts context payloads using AES-GCM (Envelope Encryption).
// Stacks only hold intent ids and message metadata and are passed through.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.Storage) ports.Storage {
		return &encryptionMiddleware{
			Storage: next,
			config:  config,
		}
	}
}

// payload is the encrypted part of a context.
type payload struct {
	StartData      map[string]any         `json:"start_data,omitempty"`
	DialogData     map[string]any         `json:"dialog_data"`
	WidgetData     map[string]any         `json:"widget_data"`
	AccessSettings *domain.AccessSettings `json:"access_settings,omitempty"`
}

func (m *encryptionMiddleware) SaveContext(ctx context.Context, chat domain.ChatKey, c *domain.Context) error {
	plainText, err := json.Marshal(payload{
		StartData:      c.StartData,
		DialogData:     c.DialogData,
		WidgetData:     c.WidgetData,
		AccessSettings: c.AccessSettings,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal context: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt context: %w", err)
	}

	// The envelope keeps only the addressing fields in clear.
	envelope := domain.NewContext(c.IntentID, c.StackID, c.State, nil)
	envelope.DialogData = map[string]any{
		envelopeKey: base64.StdEncoding.EncodeToString(ciphertext),
	}

	return m.Storage.SaveContext(ctx, chat, envelope)
}

func (m *encryptionMiddleware) LoadContext(ctx context.Context, chat domain.ChatKey, intentID string) (*domain.Context, error) {
	envelope, err := m.Storage.LoadContext(ctx, chat, intentID)
	if err != nil {
		return nil, err
	}

	encryptedStr, ok := envelope.DialogData[envelopeKey].(string)
	if !ok {
		// Fail secure: plain contexts are rejected once encryption is configured.
		return nil, errors.New("context is missing encrypted data envelope")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encryptedStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt context: %w", err)
	}

	var p payload
	if err := json.Unmarshal(plainText, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted context: %w", err)
	}

	c := domain.NewContext(envelope.IntentID, envelope.StackID, envelope.State, p.StartData)
	if p.DialogData != nil {
		c.DialogData = p.DialogData
	}
	if p.WidgetData != nil {
		c.WidgetData = p.WidgetData
	}
	c.AccessSettings = p.AccessSettings
	return c, nil
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	ciphertextBytes := ciphertext[gcm.NonceSize():]

	return gcm.Open(nil, nonce, ciphertextBytes, nil)
}
