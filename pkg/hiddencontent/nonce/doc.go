// Package nonce issues and verifies short-lived authenticity tokens for form
// submissions.
//
// A token is an HMAC-SHA256 over the current time tick, the action name and
// the acting user. A tick is half the configured lifetime, and a token is
// accepted during the tick it was issued in and the one after, so it stays
// valid for between one half and one full lifetime.
//
// Usage:
//
//	signer := nonce.New(nonce.WithSecretKey(secret))
//	token := signer.Issue("save_page", userID)
//	ok := signer.Verify(token, "save_page", userID)
package nonce
