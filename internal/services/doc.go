// Package services defines the [LanguageModel] and [Catalog] interfaces and implements them for Gemini and YouTube.
//
// # Gemini
//
// [GeminiService] wraps google.golang.org/genai. A single user turn is sent per call and the
// concatenated text parts of the first candidate are returned unmodified; cleaning the output is
// the parser's job, not the client's.
//
// # YouTube
//
// [YouTubeService] wraps the YouTube Data API v3 client from google.golang.org/api.
// Authentication uses a long-lived refresh token: the [oauth2.Config] transport exchanges it
// for access tokens as needed, so no interactive flow runs in this process.
//
// Every call waits on a [rate.Limiter] first. Remote failures are logged with their HTTP status
// and returned wrapped in [shared.ErrAPIRequest]; no call is retried here.
//
// # Endpoints
//
// Both clients accept a base URL override so tests can point them at an [httptest.Server].
package services
