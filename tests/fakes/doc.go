// Package fakes provides test doubles for the davsync credential backends.
//
// Fakes are manually implemented (not generated) to provide precise control
// over test behavior. Each one records how it was called.
//
// Usage:
//
//	kr := fakes.NewFakeKeyring()
//	kr.SetSecret("davsync:example.com", "bob", "hunter2")
//	resolver := credentials.New(cfg, nil, credentials.Backends{Keyring: kr})
package fakes
