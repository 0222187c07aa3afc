package richplan

const identifyPromptCommon = `The user message is JSON:
{"category": "...", "language": "...", "files": ["dir/file.ext", ...], "metadata": {"title": "...", ...}, "candidates": [{"title": "...", "original_title": "...", "year": 2011, "original_language": "zh"}]}

- files: video and subtitle paths from a single download. Extract titles, years, season and episode numbers from names and directories.
- metadata: details from the download source. Prefer it over file names when present.
- candidates: TMDB search results for the inferred title. Use them to confirm the exact title and release year. They may be empty or wrong.

Prefer the Chinese title when the content language is Chinese and a Chinese title exists; otherwise use the official English title. Keep titles clean: no release group, resolution, codec, or punctuation noise.
`

// MoviePrompt is the system prompt used to identify movie files.
const MoviePrompt = `You identify movies in a download so they can be filed in a Jellyfin library.

` + identifyPromptCommon + `
For every file give the movie title and its theatrical release year. A subtitle belongs to the same movie as its video. Omit files you cannot identify, extras, and trailers.

Respond ONLY with JSON: {"files": [{"file": "<exact input path>", "title": "<movie title>", "year": 1995}]}`

// SeriesPrompt is the system prompt used to identify episode files.
const SeriesPrompt = `You identify TV series episodes in a download so they can be filed in a Jellyfin library.

` + identifyPromptCommon + `
For every file give the series title, the release year of its FIRST season, the season number and the episode number. A subtitle belongs to the episode it matches. Omit files you cannot identify, specials, and extras.

Respond ONLY with JSON: {"files": [{"file": "<exact input path>", "title": "<series title>", "year": 2011, "season": 1, "episode": 1}]}`
