// Package services defines the [Catalog] interface for music metadata providers and implements it for Spotify.
//
// # Spotify Implementation
//
// [SpotifyService] wraps the zmb3/spotify client. Authentication uses the OAuth2 client credentials flow;
// the token source refreshes expired tokens on its own.
//
// Requests travel over a retryablehttp transport that retries transport errors, 429 and 5xx responses up to
// the configured retry count. The resolver itself never retries.
//
// # Query Format
//
// A pair is resolved with the free-text query "track:<title> artist:<singer>", limited to one result.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNoMatch] : search returned no tracks
//   - [shared.ErrNoFeatures] : the audio-features endpoint returned no entry
//   - [shared.ErrAPIRequest] : transport, auth, or decode failure
//   - [shared.ErrMissingCredentials] : client id or secret not provided
package services
