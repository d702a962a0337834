package main

import (
	"fmt"
	"os"

	"cheatbot/internal/infra/config"
)

// runEncrypt prints the enc: form of a secret, ready to paste into config.yaml.
func runEncrypt(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: cheatbot encrypt VALUE")
	}
	passphrase := os.Getenv("CHEATBOT_CONFIG_KEY")
	if passphrase == "" {
		return fmt.Errorf("CHEATBOT_CONFIG_KEY must be set")
	}
	enc, err := config.EncryptValue(args[0], passphrase)
	if err != nil {
		return err
	}
	fmt.Println(enc)
	return nil
}
