// Package bot is the Telegram front end for the playlist pipeline.
//
// A [Bot] long-polls for messages and accepts two triggers:
//
//	/createplaylist <prompt>
//	@botname createplaylist <prompt>
//
// Accepted requests pass a per-user [Cooldown] and are queued on a bounded [Pool], so polling
// never waits on a run. Each run reports through a [ChatResponder], which edits its
// acknowledgement into the final notice or report.
package bot
