package tasks

import "fmt"

const promptTemplate = `
You are a helpful assistant that creates music playlists.
Based on the user's request, generate a JSON object with the following structure:
{
  "playlist_name": "string",
  "description": "string",
  "songs": [
    {"title": "string", "artist": "string"}
  ]
}
Only respond with the JSON object. Do not include any other text, explanations, or markdown formatting like ` + "```json ... ```" + `.
Ensure song titles and artists are accurate and well-known if possible.
User request: %q
`

// BuildPrompt embeds the user's request into the fixed instruction template.
func BuildPrompt(request string) string {
	return fmt.Sprintf(promptTemplate, request)
}
