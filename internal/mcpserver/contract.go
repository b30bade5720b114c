package mcpserver

// SourceFormatContract describes the CSV layout the external card source
// must follow so that rows become custom cards.
const SourceFormatContract = `# Kartica Card Source Format

Custom cards are read from a CSV document: a published spreadsheet URL or a
local file. Each data row becomes one card in the "Custom" category.

## Structure

` + "```" + `csv
English,Croatian
Good morning,Dobro jutro
Thank you,Hvala
` + "```" + `

## Rules

1. **At least two columns.** Documents narrower than two columns are rejected
   and only the built-in cards are shown.
2. **The first row is the header.** The first non-blank row is always read as
   the header and never becomes a card. A cell equal to a configured column
   name, ignoring case, selects that side. The defaults are
   ` + "`" + `English` + "`" + ` for the source term and ` + "`" + `Croatian` + "`" + ` for the target term.
3. **Column order.** Matched columns are used wherever they are. A side
   without a match falls back to column 1 (source) or column 2 (target), or to
   the first column the other side did not take.
4. **Both values are required.** Rows with an empty source or target after
   trimming whitespace are skipped.
5. **Blank lines** are ignored and do not count as rows.
6. **Encoding** is UTF-8. A leading byte order mark is removed. Quoted fields
   may contain commas and line breaks.

## Card IDs

Custom cards get the ID ` + "`" + `custom-N` + "`" + `, where N is the zero-based position of
the data row. Skipped rows still use up their number. Reordering or inserting
rows changes IDs, so favorites on custom cards may point at different cards
after a reload.
`
