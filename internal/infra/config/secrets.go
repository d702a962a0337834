package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"

	"cheatbot/internal/domain"
)

// encPrefix marks a config value that must be decrypted before use.
const encPrefix = "enc:"

// decryptSecrets replaces every "enc:..." token in cfg with its plaintext.
func decryptSecrets(cfg *Config, passphrase string) error {
	secrets := map[string]*string{
		"discord.token":   &cfg.Discord.Token,
		"slack.bot_token": &cfg.Slack.BotToken,
		"slack.app_token": &cfg.Slack.AppToken,
	}
	for name, fp := range secrets {
		if !strings.HasPrefix(*fp, encPrefix) {
			continue
		}
		decrypted, err := DecryptValue(strings.TrimPrefix(*fp, encPrefix), passphrase)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*fp = decrypted
	}
	return nil
}

// EncryptValue encrypts a plaintext value with AES-256-GCM using a passphrase.
// The result is ready to paste into the config: "enc:" + hex(salt) + ":" + hex(nonce+ciphertext).
func EncryptValue(plaintext, passphrase string) (string, error) {
	salt := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", encryptErr("generate salt", err)
	}

	gcm, err := newGCM(passphrase, salt)
	if err != nil {
		return "", encryptErr("create gcm", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", encryptErr("generate nonce", err)
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return encPrefix + hex.EncodeToString(salt) + ":" + hex.EncodeToString(ciphertext), nil
}

// DecryptValue decrypts a value produced by EncryptValue, with or without
// the "enc:" prefix.
func DecryptValue(encrypted, passphrase string) (string, error) {
	encrypted = strings.TrimPrefix(encrypted, encPrefix)
	saltHex, dataHex, ok := strings.Cut(encrypted, ":")
	if !ok {
		return "", decryptErr("invalid encrypted format")
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return "", decryptErr("decode salt: " + err.Error())
	}
	data, err := hex.DecodeString(dataHex)
	if err != nil {
		return "", decryptErr("decode ciphertext: " + err.Error())
	}

	gcm, err := newGCM(passphrase, salt)
	if err != nil {
		return "", decryptErr("create gcm: " + err.Error())
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", decryptErr("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", decryptErr(err.Error())
	}
	return string(plaintext), nil
}

func newGCM(passphrase string, salt []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// deriveKey uses Argon2id to derive a 32-byte key from passphrase + salt.
func deriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, 1, 64*1024, 4, 32)
}

func encryptErr(step string, err error) error {
	return domain.NewDomainError("config.EncryptValue", domain.ErrEncryption, step+": "+err.Error())
}

func decryptErr(detail string) error {
	return domain.NewDomainError("config.DecryptValue", domain.ErrDecryption, detail)
}
