package mcpserver

const fence = "```"

// HeaderFormatContract describes the document header postdex reads and the
// defaults it fills in on every refresh.
const HeaderFormatContract = `# Postdex Header Format

Every document may start with a YAML header between two lines that are
exactly ` + "`---`" + `. Leading blank lines before the opening line are ignored.

## Structure

` + fence + `markdown
---
title: Human-readable title
date: 2024-05-01T10:00:00Z
summary: One-line abstract
category: notes
tags:
  - go
  - tooling
---

Body text in standard Markdown.
` + fence + `

## Defaults filled by refresh

Missing fields are added, present fields are never changed. A field that is
present with an empty (null) value counts as present.

| Field      | Default                                                        |
|------------|----------------------------------------------------------------|
| title      | file name without extension                                    |
| date       | time of the refresh, RFC 3339                                  |
| summary    | empty string                                                   |
| category   | first directory of the path when nested two levels or deeper   |
| tags       | directories between the first one and the file name            |

Examples for category and tags:

- ` + "`a/b/c.md`" + ` → category ` + "`a`" + `, tags ` + "`[b]`" + `
- ` + "`a/b.md`" + ` → category ` + "`a`" + `, tags ` + "`[]`" + `
- ` + "`c.md`" + ` → category null, tags ` + "`[]`" + `

When a header is added or completed the file is rewritten with keys in
alphabetical order, followed by one blank line and the unchanged body.

## Index

Refresh writes ` + "`static/index.json`" + ` (configurable): one record per
document with ` + "`category, tags, content, summary, title, created, updated, url`" + `.
` + "`content`" + ` holds the first 1000 characters of the body and ` + "`url`" + ` is
` + "`/posts/<relative path>`" + `.

## Rules

1. The opening and closing lines are exactly three dashes.
2. The header must be a YAML mapping. A malformed header stops the refresh
   and nothing is written.
3. Paths use forward slashes and keep their extension.
`
