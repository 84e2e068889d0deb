// Package tasks turns a free-text request into a populated playlist.
//
// # Pipeline
//
// [Orchestrator.Run] drives a linear state machine (see [Stage]):
//
//  1. Acknowledge the request through the [Responder]
//  2. Check that both the language model and the catalog are configured
//  3. Ask the model for a playlist using [BuildPrompt]
//  4. [Parse] the output into a [models.PlaylistSpec]
//  5. Create exactly one remote playlist
//  6. [Resolver.Resolve] each song: search, then attach the best match
//  7. Summarize with formatter.Summarize and send the report
//
// Any failure before step 6 is terminal: one notice is sent and the run returns.
// A model that suggests zero songs is a normal outcome, not an error.
//
// # Failure isolation
//
// Song resolution is strictly sequential. Each song yields exactly one [models.Resolution]
// and a failure on one song never prevents the next from being tried. There are no retries;
// retry policy belongs to the service clients.
//
// # Progress Reporting
//
// Runs may carry a progress channel. Updates use select with default to prevent blocking,
// so a slow UI can drop updates but never stall a run.
//
// # History
//
// The optional [RunRecorder] receives a [models.RunRecord] once the run stops.
// Recording errors are logged and ignored.
package tasks
