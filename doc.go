// Package identity adapts an external authentication library to a
// relational store and decides whether a sign-in attempt is allowed.
//
// The package exposes three pieces: a store Adapter implementing the
// persistence contract expected by the authentication library (users,
// linked accounts, sessions, one-time verification tokens), a sign-in
// decision pipeline (see the signin subpackage) that gates first-time
// sign-ups behind invitations, allow-lists, disposable-email rejection
// and provider group membership, and two fiber HTTP controllers: the
// auth entry handler and the user profile update endpoint.
//
// Identity providers are declared in the provider subpackage and built
// once at startup from configuration presence.
package identity
