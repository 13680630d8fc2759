// Package owners resolves the weakly referenced content objects that
// transcription artifacts hang off of. Owners are addressed by a tagged
// {kind, id} reference and looked up through a registry of typed accessors,
// so the pipeline never reflects over arbitrary types. Attribute extraction
// (the speaker gender hint) is best effort and returns empty on any miss.
package owners
