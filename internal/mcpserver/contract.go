package mcpserver

// ItemFormatContract describes the todo item shape that tool results use.
// It is served as the nbtodo://item-format resource so MCP clients can
// ground themselves before calling tools.
const ItemFormatContract = `# nbtodo Item Format

Every todo item returned by the tools is a JSON object with this shape.

## Structure

` + "```" + `json
{
  "id": "0b6f1c1e-8f2a-4f6e-9c3d-2a1b0c9d8e7f",
  "text": "buy milk",
  "done": false,
  "source": "manual",
  "originCell": 0,
  "originLine": 0
}
` + "```" + `

Items mined from notebooks additionally carry their origin:

` + "```" + `json
{
  "id": "notebook:projects/q3/report.ipynb:2:5",
  "text": "rerun with fresh data",
  "done": false,
  "source": "notebook",
  "originPath": "projects/q3/report.ipynb",
  "originCell": 2,
  "originLine": 5
}
` + "```" + `

## Rules

1. **` + "`" + `source` + "`" + ` is either ` + "`" + `manual` + "`" + ` or ` + "`" + `notebook` + "`" + `.** Manual items are
   user-authored and persist until removed. Notebook items are mined from code
   cells whose lines match a case-insensitive ` + "`" + `# TODO: <text>` + "`" + ` marker and are
   regenerated on every scan.
2. **Only manual items are mutable.** ` + "`" + `add_todo` + "`" + `, ` + "`" + `complete_todo` + "`" + ` and
   ` + "`" + `remove_todo` + "`" + ` operate on manual items; to change a notebook item, edit the
   notebook itself.
3. **Manual ids are server-assigned UUIDs.** Never invent one.
4. **Notebook ids have the form ` + "`" + `notebook:<path>:<cell>:<line>` + "`" + `** where
   ` + "`" + `<path>` + "`" + ` is the notebook path relative to the scan root (forward slashes)
   and ` + "`" + `<cell>` + "`" + `/` + "`" + `<line>` + "`" + ` are zero-based marker positions. Rescanning
   unchanged notebooks yields identical ids, so they are safe to use as keys.
5. **` + "`" + `done` + "`" + ` is always false on notebook items.** A marker that still exists in
   a notebook is by definition not done.
6. **` + "`" + `originPath` + "`" + ` is omitted on manual items.** ` + "`" + `originCell` + "`" + ` and
   ` + "`" + `originLine` + "`" + ` are always serialized but only meaningful when ` + "`" + `originPath` + "`" + `
   is set.
7. **Ordering:** ` + "`" + `list_todos` + "`" + ` returns manual items first (in stored order),
   then notebook items in scan order.

## Freshness

Notebook items come from a scan cache with a short TTL (five seconds by
default), so a todo just added to a notebook may take a few seconds to appear
in ` + "`" + `list_todos` + "`" + ` results.
`
