// Package signature finds byte signatures in memory.
//
// A Signature pairs a byte pattern with a Mask of the same length. Positions
// marked Exact must equal the pattern byte; Wildcard positions match any byte.
// Signatures are usually built once from constants:
//
//	var playerBase = signature.MustParse("48 8B 05 ?? ?? ?? ?? 48 85 C0")
//
//	addr, ok := playerBase.ScanModule("libgame.so")
//
// ScanModule collapses every failure (module not loaded, malformed name,
// pattern absent) into ok == false. A Scanner resolves the same way but
// reports which of those happened.
//
// A match is structural only. Nothing checks that the address found is the
// code or data the caller intended.
package signature
