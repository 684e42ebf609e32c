// Package cinevault provides a reusable library for managing licensable media
// content through a moderation and external-rights-registration lifecycle, and
// for selling time-bound access rights (rentals) against that content.
//
// It exposes a single Service interface that orchestrates content submission,
// moderation, registration with an external rights registry, likes, rentals,
// and the payment settlement between creators and the platform treasury.
// Implementations of repositories (memory, Postgres) and registry bridges
// (memory, HTTP) are provided under subpackages.
//
// Funds Model
//
// Value lives in an internal ledger of (token, account) balances held by the
// repository. The empty token string denotes the platform's native currency;
// any other token string names a fungible token. Every fund movement is
// expressed as a batch of ledger entries that is applied atomically: either
// the whole batch settles or none of it does. Rental payments are split
// between the content creator and the platform escrow account at a fixed
// basis-point ratio; platform fees accumulate in escrow until an admin
// withdraws them to the treasury account.
package cinevault
