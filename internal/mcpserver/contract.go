package mcpserver

// AnnotationFormatContract describes the annotation payload and batch file
// formats that LLM consumers should follow when creating or importing
// annotations.
const AnnotationFormatContract = `# Vellum Annotation Format Contract

Every annotation created through ` + "`" + `create_annotation` + "`" + ` or imported through
` + "`" + `import_batch` + "`" + ` MUST follow this structure.

## Payload

` + "```" + `json
{
  "type": "region",
  "target": {
    "location": {"type": "page", "value": 1},
    "shape": {"x": 10, "y": 20, "width": 30, "height": 15}
  },
  "description": {"message": "Check this figure"},
  "file_version": {"id": "v1"}
}
` + "```" + `

## Rules

1. **` + "`" + `type` + "`" + ` is required** and is one of ` + "`" + `region` + "`" + `, ` + "`" + `point` + "`" + `, ` + "`" + `highlight` + "`" + `, ` + "`" + `drawing` + "`" + `.
2. **Location** is ` + "`" + `{"type": "page", "value": N}` + "`" + ` for paged documents (pages start at 1)
   or ` + "`" + `{"type": "frame", "value": N}` + "`" + ` for video and other continuous content.
3. **Coordinates are percentages** (0 to 100) of the rendered page, measured from the
   top-left corner and independent of zoom and rotation.
4. **Target by type:**
   - ` + "`" + `region` + "`" + `: ` + "`" + `shape` + "`" + ` with x, y, width, height.
   - ` + "`" + `point` + "`" + `: ` + "`" + `shape` + "`" + ` with x, y (width and height are 0).
   - ` + "`" + `highlight` + "`" + `: ` + "`" + `shapes` + "`" + `, one rectangle per merged text row.
   - ` + "`" + `drawing` + "`" + `: ` + "`" + `path_groups` + "`" + `, each with ` + "`" + `paths` + "`" + ` (lists of points) and a
     ` + "`" + `stroke` + "`" + ` (color, size).
5. **` + "`" + `file_version.id` + "`" + ` is required.** Listing can filter on it.
6. **Description is optional.** Omit it rather than sending an empty message.
7. **Unknown fields are rejected.**

## Batch files

Batches are YAML or JSON files (` + "`" + `.yaml` + "`" + `, ` + "`" + `.yml` + "`" + `, ` + "`" + `.json` + "`" + `) dropped into the import
inbox. Annotation ids are optional; imports without ids receive stable ids
derived from the file name and position, so re-importing a file replaces its
annotations instead of duplicating them.

` + "```" + `yaml
file_id: "42"
file_version_id: v1
created_by: {id: reviewer, name: Reviewer, type: user}   # OPTIONAL
annotations:
  - type: point
    message: Typo in the heading
    target:
      location: {type: page, value: 2}
      shape: {x: 12.5, y: 8}
  - type: highlight
    target:
      location: {type: page, value: 3}
      shapes:
        - {x: 10, y: 40, width: 60, height: 2}
` + "```" + `
`
