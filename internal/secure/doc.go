// Package secure keeps short-lived credentials out of plain process memory.
//
// The 1Password session token lives for the whole lifetime of a client and is
// read on every command, so it is kept in a memguard enclave: encrypted at
// rest in memory, decrypted into a locked buffer only while being copied out.
// Master passwords collected for signin are wiped with Wipe once delivered.
//
// # Usage
//
//	token := secure.NewSecureString(raw)
//	defer token.Destroy()
//
//	value, err := token.Reveal()
//
// # Platform Behavior
//
// Memory locking relies on mlock (VirtualLock on Windows). On Linux the
// RLIMIT_MEMLOCK limit applies.
//
// It does NOT protect against:
//
//   - Attackers with root access to the running process
//   - Copies made by callers of Reveal
package secure
