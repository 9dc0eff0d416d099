package main

import (
	"fmt"
	"log"

	"e2ee-session/crypto/key_ed25519"
	"e2ee-session/crypto/signer_schnorr"
)

// Generates the long-term key material a party needs before it can publish
// a prekey bundle: an identity pair plus a signed prekey pair.
func main() {
	identity, err := key_ed25519.NewPair()
	if err != nil {
		log.Fatalf("Failed to generate identity key: %v", err)
	}

	signedPreKey, err := key_ed25519.NewPair()
	if err != nil {
		log.Fatalf("Failed to generate signed prekey: %v", err)
	}

	signature, err := signer_schnorr.Sign(identity.Priv, signedPreKey.Pub)
	if err != nil {
		log.Fatalf("Failed to sign prekey: %v", err)
	}

	fmt.Printf("IDENTITY PRIVATE:  %x\n", identity.Priv)
	fmt.Printf("IDENTITY PUBLIC:   %x\n", identity.Pub)
	fmt.Printf("SIGNED PREKEY PRIVATE: %x\n", signedPreKey.Priv)
	fmt.Printf("SIGNED PREKEY PUBLIC:  %x\n", signedPreKey.Pub)
	fmt.Printf("PREKEY SIGNATURE:  %x\n", signature)
}
