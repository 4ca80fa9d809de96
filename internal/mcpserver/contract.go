package mcpserver

// CurationGuide describes the curation vocabulary that LLM consumers need
// before calling the mutating tools.
const CurationGuide = `# Snap Curation Guide

The recommendation dashboard ranks snaps per category. Curators adjust the
result by hand; ranking itself runs on the backend pipeline.

## Categories

| id | heading |
|----|---------|
| popular | Most popular |
| recent | Recently updated |
| trending | Trending |
| top_rated | Top Rated |

Excluding a snap removes it from one category only. Use ` + "`" + `list_excluded_snaps` + "`" + `
to see every exclusion and ` + "`" + `include_snap` + "`" + ` to undo one.

## Editorial slices

A slice is a named, hand-picked list. Its id is derived from the name
(lowercase, spaces become underscores, punctuation dropped). Snaps are added
and removed by **package name**, not by snap id.

## Pipeline steps

Steps run in this order: ` + "`" + `collect` + "`" + `, ` + "`" + `filter` + "`" + `, ` + "`" + `extra_fields` + "`" + `, ` + "`" + `score` + "`" + `.
Triggering a step returns immediately; do not trigger it again until its last
run time in ` + "`" + `collector_status` + "`" + ` has moved.

## Featured snaps

The featured list is ordered and holds at least 16 snaps. Use ` + "`" + `search_store` + "`" + `
(queries shorter than 3 characters return nothing) to find candidates.

## Errors

Failed calls return the single message "An error occurred"; details are only
in the operator's logs. A "session expired" error means a human must log in
again at the URL given in the message.
`
