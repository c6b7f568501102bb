package parsers

import (
	"fmt"
	"strings"

	"github.com/jingkaihe/skillport/pkg/types/skill"
)

const defaultVersion = "1.0.0"

func fallbackVersion() skill.Field[string] {
	return skill.Low(defaultVersion, skill.SourceDefault, "Default version, please update")
}

func placeholderDescription(name string) skill.Field[string] {
	return skill.Low(name+" skill", skill.SourceDefault, "No description found, generated placeholder")
}

func placeholderInstructions(name, reason string) skill.Field[string] {
	return skill.Low(fmt.Sprintf("# %s\n\n[Instructions to be added]\n", name), skill.SourceDefault, reason)
}

// nameFromHeading uses the first H1, falling back to the file path.
func nameFromHeading(md *markdownDoc, path string) skill.Field[string] {
	if h1, ok := md.firstHeading(1); ok && skill.Slug(h1) != "" {
		return skill.Medium(h1, skill.SourceContent, "Extracted from first H1 header")
	}
	return skill.Low(nameFromPath(path), skill.SourceFilename, "Inferred from path")
}

func descriptionFromParagraph(md *markdownDoc, name string) skill.Field[string] {
	if p, ok := md.firstParagraph(); ok {
		return skill.Medium(p, skill.SourceContent, "Extracted from first paragraph")
	}
	return placeholderDescription(name)
}

// markdownSkill fills the fields shared by the markdown based formats:
// front matter keys when present, then document structure, then path and
// placeholder fallbacks.
func markdownSkill(doc Document, md *markdownDoc, fm *frontMatter) *skill.Skill {
	s := &skill.Skill{}

	if fm.Name != "" {
		s.Name = skill.High(fm.Name, skill.SourceFrontmatter)
	} else {
		s.Name = nameFromHeading(md, doc.Path)
	}

	if fm.Description != "" {
		s.Description = skill.High(fm.Description, skill.SourceFrontmatter)
	} else {
		s.Description = descriptionFromParagraph(md, s.Name.Value)
	}

	if fm.Version != "" {
		s.Version = skill.High(fm.Version, skill.SourceFrontmatter)
	} else {
		s.Version = fallbackVersion()
	}

	s.Author = fm.author()
	s.License = fm.license()
	if strings.TrimSpace(md.body) != "" {
		s.Instructions = skill.High(md.body, skill.SourceContent)
	} else {
		s.Instructions = placeholderInstructions(s.Name.Value, "Document has no body")
	}

	deps := newDependencyCollector()
	for _, tool := range fm.Tools {
		deps.addQualified(tool, skill.ConfidenceHigh, skill.SourceFrontmatter, "")
	}
	deps.addFromText(md.body)
	deps.addFromTables(md)
	s.Dependencies = deps.dependencies()

	triggers := newTriggerCollector()
	for _, kw := range fm.Triggers {
		triggers.keyword(skill.High(kw, skill.SourceFrontmatter))
	}
	triggers.fromSection(md)
	triggers.fromCommands(md.body)
	s.Triggers = triggers.triggers

	return s
}
