package engine

// LLM prompt templates. Data only, no logic.

// narrativePrompt asks for a short plain-text summary of a channel's statistics.
// Args: current date, channel title, facts block.
const narrativePrompt = `You are a YouTube analytics assistant. Write a short narrative about the channel below
using ONLY the facts provided.

Current date: %s

Respond with valid JSON only (no markdown, no ` + "`" + `json` + "`" + ` block):
{"summary": "4-6 sentence plain-text summary"}

Rules:
- Mention audience size, overall reach and how engagement is distributed across videos
- Point out the best performing videos by name and any visible trend in upload activity
- Plain text only: NO markdown, NO lists, NO emojis
- Do NOT invent numbers that are not in the facts

Channel: %s

Facts:
%s`
