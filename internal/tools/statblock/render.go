// Package statblock renders monster records as Obsidian markdown documents
// using the fantasy-statblocks plugin's inline statblock syntax, and drives
// the batch conversion of a whole corpus into an output directory.
package statblock

import (
	"fmt"
	"io"
	"strings"

	md "github.com/nao1215/markdown"

	"github.com/beastforge/beastforge/pkg/bestiary"
	"github.com/beastforge/beastforge/pkg/errors"
)

// layoutName is the fantasy-statblocks layout every document references.
const layoutName = "Basic Pathfinder 1e Layout"

// Renderer turns one MonsterRecord into one document. It is pure: the
// record is never mutated and the same record always yields the same
// line sequence.
type Renderer struct {
	quoting Quoting
}

// NewRenderer creates a Renderer with the given quoting mode.
func NewRenderer(quoting Quoting) *Renderer {
	return &Renderer{quoting: quoting}
}

// RenderOptions carry per-document parameters that are not part of the
// record itself.
type RenderOptions struct {
	// Name overrides the document name; empty means the record's title.
	// The batch driver uses this to prefix NPC records.
	Name string

	// SourceURL, when non-empty, adds a Source Link section pointing at
	// the record's Archives of Nethys page.
	SourceURL string
}

// Render writes the full document for rec to w.
func (r *Renderer) Render(w io.Writer, rec *bestiary.MonsterRecord, opts RenderOptions) error {
	name := opts.Name
	if name == "" {
		name = rec.Title2
	}

	d := &doc{w: w}

	// Front matter
	d.line("---")
	d.line("statblock: inline")
	d.line("tags: monster")
	d.printf("name: %s\n", name)
	d.line("---")

	d.line("```statblock")
	d.printf("layout: %s\n", layoutName)
	d.printf("source:  %s\n", r.quoting.quote(sourceName(rec.Sources[0].Name)))

	d.printf("Monster_CR: %s\n", rec.CR)
	d.printf("name: %s\n", name)
	d.printf("Monster_XP: %s\n", rec.XP)

	if rec.Race.IsSet() {
		d.printf("race: %s\n", rec.Race)
	}
	if rec.Classes != nil {
		d.printf("class: %s\n", r.quoting.quote(strings.Join(rec.Classes, ", ")))
	}

	d.printf("alignment: %s\n", rec.Alignment)
	d.printf("size: %s\n", rec.Size)
	d.printf("type: %s\n", rec.Type)
	if rec.Subtypes != nil {
		d.printf("subtype: %s\n", r.quoting.quote("("+strings.Join(rec.Subtypes, ", ")+")"))
	}

	r.renderInitiative(d, rec.Initiative)

	if mod, ok := rec.Skills.Perception(); ok {
		if mod == nil {
			return errors.NewUnexpectedShapeError(rec.Key, "skills.Perception._", nil)
		}
		d.printf("perception: %+d\n", *mod)
	}

	r.renderSenses(d, rec.Senses)

	if rec.Auras != nil {
		d.printf("aura: %s\n", r.quoting.quote(strings.Join(rec.Auras, ", ")))
	}

	if err := r.renderAC(d, rec); err != nil {
		return err
	}

	r.renderHP(d, rec.HP)

	d.printf("saves: %s\n", r.quoting.quote(fmt.Sprintf(
		"Fort %+d, Ref %+d, Will %+d", rec.Saves.Fort, rec.Saves.Ref, rec.Saves.Will)))
	if rec.Saves.Other.IsSet() {
		d.printf("saves_other: %s\n", r.quoting.quote(rec.Saves.Other.String()))
	}

	if rec.Immunities != nil {
		d.printf("immune: %s\n", r.quoting.quote(strings.Join(rec.Immunities, ", ")))
	}
	if rec.Resistances != nil {
		resist := make([]string, 0, len(rec.Resistances))
		for _, item := range rec.Resistances {
			resist = append(resist, item.Key+" "+bestiary.FormatScalar(item.Value))
		}
		d.printf("resist: %s\n", r.quoting.quote(strings.Join(resist, ", ")))
	}
	if rec.DR != nil {
		dr := make([]string, 0, len(rec.DR))
		for _, entry := range rec.DR {
			dr = append(dr, entry.Amount.String()+"/"+entry.Weakness)
		}
		d.printf("DR: %s\n", r.quoting.quote(strings.Join(dr, ", ")))
	}
	if rec.DefensiveAbilities != nil {
		d.printf("defensive_abilities: %s\n", r.quoting.quote(strings.Join(rec.DefensiveAbilities, ", ")))
	}
	if rec.SR.IsSet() {
		d.printf("SR: %s\n", rec.SR)
	}
	if rec.Weaknesses != nil {
		d.printf("weak: %s\n", r.quoting.quote(strings.Join(rec.Weaknesses, ", ")))
	}

	r.renderSpeeds(d, rec.Speeds)

	if rec.Attacks.Melee != nil {
		d.printf("melee: %s\n", r.quoting.quote(strings.Join(rec.Attacks.Melee, ", ")))
	}
	if rec.Attacks.Ranged != nil {
		d.printf("ranged: %s\n", r.quoting.quote(strings.Join(rec.Attacks.Ranged, ", ")))
	}
	if rec.Attacks.Special != nil {
		d.printf("special_attacks: %s\n", r.quoting.quote(strings.Join(rec.Attacks.Special, ", ")))
	}

	if rec.Space.IsSet() {
		d.printf("space: %s ft.\n", rec.Space)
	}
	if rec.Reach.IsSet() {
		if rec.ReachOther.IsSet() {
			d.printf("reach: %s ft. (%s)\n", rec.Reach, rec.ReachOther)
		} else {
			d.printf("reach: %s ft.\n", rec.Reach)
		}
	}

	if rec.Tactics != nil {
		d.line("tactics:")
		for _, t := range rec.Tactics {
			d.printf("  - name: %s\n", t.Name)
			r.desc(d, t.Text)
		}
	}

	stats := make([]string, 0, 6)
	for _, s := range rec.AbilityScores.Values() {
		stats = append(stats, s.String())
	}
	d.printf("pf1e_stats: [%s]\n", strings.Join(stats, ", "))

	d.printf("BAB: %s\n", rec.BAB)
	if rec.CMBOther.IsSet() {
		d.printf("CMB: %s (%s)\n", rec.CMB, rec.CMBOther)
	} else {
		d.printf("CMB: %s\n", rec.CMB)
	}
	if rec.CMDOther.IsSet() {
		d.printf("CMD: %s (%s)\n", rec.CMD, rec.CMDOther)
	} else {
		d.printf("CMD: %s\n", rec.CMD)
	}

	if rec.Feats != nil {
		d.printf("feats: %s\n", r.quoting.quote(strings.Join(rec.Feats, ", ")))
	}

	r.renderSkills(d, rec.Skills)

	if rec.Languages != nil {
		d.printf("languages: %s\n", r.quoting.quote(strings.Join(rec.Languages, ", ")))
	}
	if rec.SpecialQualities != nil {
		d.printf("special_qualities: %s\n", r.quoting.quote(strings.Join(rec.SpecialQualities, ", ")))
	}

	if rec.Gear != nil {
		d.line("gear:")
		for _, g := range rec.Gear {
			d.printf("  - name: %s\n", g.Name)
			r.desc(d, strings.Join(g.Items, ", "))
		}
	}

	r.renderEcology(d, rec.Ecology)

	if rec.SpecialAbilities != nil {
		d.line("special_abilities:")
		for _, sa := range rec.SpecialAbilities {
			d.printf("  - name: %s\n", sa.Name)
			r.desc(d, sa.Text)
		}
	}

	r.renderSpells(d, rec.Spells)
	r.renderPsychicMagic(d, rec.PsychicMagic)
	r.renderSLA(d, rec.SpellLikeAbilities)

	d.line("sources:")
	for _, src := range rec.Sources {
		d.printf("  - name: %s\n", r.quoting.quote(strings.ReplaceAll(src.Name, "#", "No. ")))
		r.desc(d, src.Page.String())
	}

	if rec.DescShort.IsSet() {
		d.printf("desc_short: %s\n", rec.DescShort)
	}

	d.line("```")
	if d.err != nil {
		return d.err
	}

	// The markdown builder does not terminate its last line.
	if rec.DescLong.IsSet() {
		d.line("")
		if err := md.NewMarkdown(w).
			H1("Description").
			PlainText(rec.DescLong.String()).
			Build(); err != nil {
			return err
		}
		d.line("")
	}

	if opts.SourceURL != "" {
		d.line("")
		if err := md.NewMarkdown(w).
			H1("Source Link").
			PlainText(md.Link("Archives of Nethys", opts.SourceURL)).
			Build(); err != nil {
			return err
		}
		d.line("")
	}

	d.line("")
	d.line("```encounter-table")
	d.printf("name: %s\n", name)
	d.line("creatures:")
	d.printf("  - 1: %s\n", name)
	d.line("```")

	return d.err
}

// sourceName applies the source-line munging: well-known Bestiary volumes
// get the full product prefix, and issue markers spell out "No. ".
func sourceName(name string) string {
	if len(name) >= 8 && name[:8] == "Bestiary" {
		name = "Pathfinder RPG " + name
	}
	return strings.ReplaceAll(name, "#", "No. ")
}

func (r *Renderer) renderInitiative(d *doc, ini bestiary.Initiative) {
	if !ini.Bonus.IsMulti() {
		d.printf("INI: %+d\n", ini.Bonus.Values()[0])
		return
	}
	signed := make([]string, 0, len(ini.Bonus.Values()))
	for _, v := range ini.Bonus.Values() {
		signed = append(signed, fmt.Sprintf("%+d", v))
	}
	if ini.Ability.IsSet() {
		d.printf("INI: %s;  %s\n", strings.Join(signed, "/"), ini.Ability)
	} else {
		d.printf("INI: %s\n", strings.Join(signed, "/"))
	}
}

func (r *Renderer) renderSenses(d *doc, senses bestiary.Fields) {
	if senses == nil {
		return
	}
	parts := make([]string, 0, len(senses))
	for _, s := range senses {
		if r.quoting == QuotingStrict && bestiary.IsNumeric(s.Value) {
			parts = append(parts, s.Key+" "+bestiary.FormatScalar(s.Value))
		} else {
			// Compat mode matches the legacy output, which always
			// emitted the bare sense name.
			parts = append(parts, s.Key)
		}
	}
	d.printf("senses: %s\n", r.quoting.quote(strings.Join(parts, ", ")))
}

func (r *Renderer) renderAC(d *doc, rec *bestiary.MonsterRecord) error {
	ac := fmt.Sprintf("%s, touch %s, flat-footed %s",
		rec.AC.AC, rec.AC.Touch, rec.AC.FlatFooted)
	if rec.AC.Components != nil {
		var bonuses []string
		var atEnd strings.Builder
		for _, comp := range rec.AC.Components {
			if n, ok := bestiary.AsInt(comp.Value); ok {
				bonuses = append(bonuses, fmt.Sprintf("%s %+d", comp.Key, n))
				continue
			}
			list, ok := comp.Value.([]any)
			if !ok {
				return errors.NewUnexpectedShapeError(rec.Key, "AC.components."+comp.Key, comp.Value)
			}
			items := make([]string, 0, len(list))
			for _, item := range list {
				items = append(items, bestiary.FormatScalar(item))
			}
			atEnd.WriteString("; " + strings.Join(items, ", "))
		}
		ac += " (" + strings.Join(bonuses, ", ") + atEnd.String() + ")"
	}
	d.printf("AC: %s\n", r.quoting.quote(ac))
	return nil
}

func (r *Renderer) renderHP(d *doc, hp bestiary.HitPoints) {
	special := make([]string, 0, len(hp.Extra))
	for _, item := range hp.Extra {
		special = append(special,
			strings.ReplaceAll(item.Key, "_", " ")+" "+bestiary.FormatScalar(item.Value))
	}
	d.printf("HP: %s\n", hp.HP)
	d.printf("HP_extra: %s\n", r.quoting.quote(strings.Join(special, "; ")))
	d.printf("HD: %s\n", hp.Long)
}

func (r *Renderer) renderSpeeds(d *doc, speeds bestiary.Fields) {
	var parts []string
	if base, ok := speeds.Get("base"); ok {
		parts = append(parts, bestiary.FormatScalar(base)+" ft.")
	}
	flyOtherConsumed := false
	if fly, ok := speeds.Get("fly"); ok {
		flyText := "fly " + bestiary.FormatScalar(fly) + " ft."
		if man, ok := speeds.Get("fly_maneuverability"); ok {
			parts = append(parts, flyText+" ("+bestiary.FormatScalar(man)+")")
		} else if other, ok := speeds.Get("fly_other"); ok {
			parts = append(parts, flyText+" ("+bestiary.FormatScalar(other)+")")
			flyOtherConsumed = true
		} else {
			parts = append(parts, flyText)
		}
	}
	for _, item := range speeds {
		switch item.Key {
		case "base", "fly", "fly_maneuverability":
			continue
		case "fly_other":
			if flyOtherConsumed {
				continue
			}
		}
		if item.Key == "base_other" {
			parts = append(parts, " "+bestiary.FormatScalar(item.Value))
		} else {
			parts = append(parts, item.Key+" "+bestiary.FormatScalar(item.Value)+" ft.")
		}
	}
	d.printf("speed: %s\n", r.quoting.quote(strings.Join(parts, ", ")))
}

func (r *Renderer) renderSkills(d *doc, skills *bestiary.Skills) {
	if skills == nil {
		return
	}
	parts := make([]string, 0, len(skills.Entries))
	for _, entry := range skills.Entries {
		val := ""
		if entry.Mod != nil {
			val = fmt.Sprintf("%+d", *entry.Mod)
		}
		parts = append(parts, entry.Name+" "+val)
	}
	d.printf("skills: %s\n", r.quoting.quote(strings.Join(parts, ", ")))

	if skills.RacialMods == nil {
		return
	}
	d.line("racial_modifiers:")
	for _, mod := range skills.RacialMods {
		switch {
		case mod.Subs != nil:
			for _, sub := range mod.Subs {
				d.printf("- %s %s\n", mod.Skill, bestiary.FormatScalar(sub.Value))
			}
		case mod.Skill == "":
			d.printf("- %s\n", mod.Value)
		default:
			d.printf("- %s %s\n", mod.Skill, mod.Value)
		}
	}
}

func (r *Renderer) renderEcology(d *doc, eco *bestiary.Ecology) {
	if eco == nil {
		return
	}
	d.line("ecology:")
	if eco.Environment.IsSet() {
		d.line("  - name: Environment")
		r.desc(d, eco.Environment.String())
	}
	if eco.Organization.IsSet() {
		d.line("  - name: Organisation")
		r.desc(d, eco.Organization.String())
	}
	switch {
	case eco.Treasure != nil && eco.TreasureType.IsSet():
		d.line("  - name: Treasure")
		r.desc(d, eco.TreasureType.String()+" ("+strings.Join(eco.Treasure, ", ")+")")
	case eco.TreasureType.IsSet():
		r.desc(d, eco.TreasureType.String())
	}
}

func (r *Renderer) renderSpells(d *doc, block *bestiary.SpellBlock) {
	if block == nil {
		return
	}
	for _, source := range block.Sources {
		switch source.Type {
		case "prepared":
			d.line("spells_prepared:")
		case "known":
			d.line("known_spells:")
		}
		d.line("  - name:")
		r.desc(d, "(CL "+source.CL.String()+")")

		// Spell lists group by level in order of first appearance.
		var levels bestiary.Fields
		for _, entry := range block.Entries {
			text := entry.Name
			if entry.Count.IsSet() {
				text = entry.Count.String() + "x" + entry.Name
			}
			if entry.DC.IsSet() {
				text += " (DC" + entry.DC.String() + ")"
			}
			if existing, ok := levels.Get(entry.Level); ok {
				levels = levels.Set(entry.Level, existing.(string)+", "+text)
			} else {
				levels = append(levels, bestiary.Field{Key: entry.Level, Value: text})
			}
		}

		for _, level := range levels {
			header := spellLevelHeader(level.Key, source.Slots)
			d.printf("  - name: %s\n", header)
			r.desc(d, level.Value.(string))
		}
	}
}

// spellLevelHeader renders a spell level with its ordinal suffix and, when
// the source has a slot table, the per-day usage: "0 (at-will)",
// "1st (3/day)".
func spellLevelHeader(level string, slots bestiary.Fields) string {
	header := level
	switch level {
	case "1":
		header += "st"
	case "2":
		header += "nd"
	case "3":
		header += "rd"
	case "0":
	default:
		header += "th"
	}
	if slots != nil {
		if slot, ok := slots.Get(level); ok {
			if level == "0" {
				header += " (at-will)"
			} else {
				header += " (" + bestiary.FormatScalar(slot) + "/day)"
			}
		}
	}
	return header
}

func (r *Renderer) renderPsychicMagic(d *doc, block *bestiary.PsychicBlock) {
	if block == nil {
		return
	}
	for _, source := range block.Sources {
		d.line("psychic_magic:")
		d.line("  - name:")
		r.desc(d, fmt.Sprintf("%s; Concentration %+d)", source.CL, source.Concentration))

		parts := make([]string, 0, len(block.Entries))
		for _, entry := range block.Entries {
			if !entry.PE.IsSet() {
				parts = append(parts, entry.Name)
				continue
			}
			dc := ""
			if entry.DC.IsSet() {
				dc = "; DC" + entry.DC.String()
			}
			parts = append(parts, entry.Name+" (PE"+entry.PE.String()+dc+")")
		}
		d.printf("  - name: %s PE\n", block.PE)
		r.desc(d, strings.Join(parts, ", "))
	}
}

func (r *Renderer) renderSLA(d *doc, block *bestiary.SLABlock) {
	if block == nil {
		return
	}
	d.line("spell-like_abilities:")
	for _, source := range block.Sources {
		if source.Name == "default" {
			d.line("  - name:")
		} else {
			d.printf("  - name: %s\n", source.Name)
		}
		if source.Concentration != nil {
			r.desc(d, fmt.Sprintf("(CL %s; Concentration %+d)", source.CL, *source.Concentration))
		} else {
			r.desc(d, "(CL "+source.CL.String()+")")
		}

		// Abilities group by frequency bucket in order of first appearance.
		var buckets bestiary.Fields
		for _, entry := range block.Entries {
			if entry.Source != source.Name {
				continue
			}
			text := entry.Name
			if entry.DC.IsSet() {
				text += " (DC " + entry.DC.String() + ")"
			}
			if existing, ok := buckets.Get(entry.Freq); ok {
				buckets = buckets.Set(entry.Freq, existing.(string)+", "+text)
			} else {
				buckets = append(buckets, bestiary.Field{Key: entry.Freq, Value: text})
			}
		}
		for _, bucket := range buckets {
			d.printf("  - name: %s\n", bucket.Key)
			r.desc(d, bucket.Value.(string))
		}
	}
}

// desc emits a quoted free-text entry line under a named list item.
func (r *Renderer) desc(d *doc, text string) {
	d.printf("    desc: %s\n", r.quoting.quoteText(text))
}

// doc writes document lines, capturing the first write error.
type doc struct {
	w   io.Writer
	err error
}

func (d *doc) printf(format string, args ...any) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, format, args...)
}

func (d *doc) line(s string) {
	d.printf("%s\n", s)
}
