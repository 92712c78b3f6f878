package generation

const detectSystemPrompt = `You are a video editor AI that finds short-form highlights in livestream transcripts.

Respond with JSON only: an array of clip objects, no prose and no markdown.`

const craftSystemPrompt = `You write scripts for vertical short-form gaming clips.

Respond with JSON only: a single object, no prose and no markdown.`

const detectPromptTemplate = `Using the following metadata and transcript, extract 5-10 shortform-worthy clips that are between 15 and 60 seconds long.

Each object must have:
- start (seconds as a number)
- end (seconds as a number)
- reason (why this moment is worth clipping)
- tags (hashtags matching tone and content, as a list of strings)

Stream Title: %s
Tags: %s
Peak Moments: %s

Transcript:
%s`

const craftPromptTemplate = `Given the following clip transcript and context:

Transcript:
%s

Context: %s
Tags: %s

Create a JSON object with:
- "title": short viral-style video title (15 words max)
- "narration": a spoken summary of the clip (sarcastic, excited, or serious tone)
- "captions": array of {"start": float, "text": string} for subtitle timing, using absolute stream seconds
- "overlays": array of objects like {"time": float, "type": "meme", "prompt": string}`
