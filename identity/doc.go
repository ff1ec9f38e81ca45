/*
Package identity derives the two deduplication signals attached to every
vote attempt.

  - Fingerprint: a salted HMAC-SHA256 digest of the voter's network
    address. Stable per address and salt, irreversible, used only to
    detect repeat votes from the same network origin.
  - Voter token: an opaque UUID held by the client across sessions. The
    server format-checks it and otherwise treats it as an opaque value.

Both signals are heuristics, not identity guarantees. A shared network
egress (NAT, proxy) can over-reject distinct voters; a cleared token on
a new network can under-reject a repeat voter. The two checks are kept
independent on purpose so operators can see which one fired.

The package is pure: the salt comes in as an argument from the startup
configuration, and nothing here touches storage.
*/
package identity
