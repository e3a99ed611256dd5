package bestiary

import (
	"fmt"

	"github.com/beastforge/beastforge/pkg/errors"
)

// MonsterRecord is one monster's complete statistical and narrative data,
// decoded from the corpus into explicit field types. Optional fields use
// nil slices / unset Scalars; a nil slice means the field was absent from
// the record, never that it was empty.
type MonsterRecord struct {
	Key string // corpus key (Archives of Nethys URL)

	Title1 string
	Title2 string

	CR        Scalar
	XP        Scalar
	Race      Scalar
	Classes   []string
	Alignment Scalar
	Size      Scalar
	Type      Scalar
	Subtypes  []string

	Initiative Initiative
	Senses     Fields
	Auras      []string

	AC    ArmorClass
	HP    HitPoints
	Saves Saves

	Immunities         []string
	Resistances        Fields
	DR                 []DamageReduction
	DefensiveAbilities []string
	SR                 Scalar
	Weaknesses         []string

	Speeds Fields

	Attacks Attacks

	Space      Scalar
	Reach      Scalar
	ReachOther Scalar

	Tactics []NamedText

	AbilityScores AbilityScores
	BAB           Scalar
	CMB           Scalar
	CMBOther      Scalar
	CMD           Scalar
	CMDOther      Scalar

	Feats  []string
	Skills *Skills

	Languages        []string
	SpecialQualities []string
	Gear             []NamedList
	Ecology          *Ecology
	SpecialAbilities []NamedText

	Spells             *SpellBlock
	PsychicMagic       *PsychicBlock
	SpellLikeAbilities *SLABlock

	Sources   []SourceRef
	DescShort Scalar
	DescLong  Scalar

	present []string
}

// Initiative holds the initiative bonus union and the optional ability
// that distinguishes multiple bonus forms.
type Initiative struct {
	Bonus   Bonus
	Ability Scalar
}

// ArmorClass holds the base/touch/flat-footed triple and the optional
// component breakdown in record order.
type ArmorClass struct {
	AC         Scalar
	Touch      Scalar
	FlatFooted Scalar
	Components Fields
}

// HitPoints holds the numeric HP, the hit-dice text, and every other
// HP sub-field in record order.
type HitPoints struct {
	HP    Scalar
	Long  Scalar
	Extra Fields
}

// Saves holds the Fortitude/Reflex/Will triple and optional free text.
type Saves struct {
	Fort  int
	Ref   int
	Will  int
	Other Scalar
}

// DamageReduction is one DR entry (amount/weakness).
type DamageReduction struct {
	Amount   Scalar
	Weakness string
}

// Attacks holds the flattened first melee and ranged attack groups and
// the special attack list.
type Attacks struct {
	Melee   []string
	Ranged  []string
	Special []string
}

// NamedText is a name plus free-text entry (tactics, special abilities).
type NamedText struct {
	Name string
	Text string
}

// NamedList is a name plus item-list entry (gear).
type NamedList struct {
	Name  string
	Items []string
}

// AbilityScores is the fixed six-element ability array.
type AbilityScores struct {
	Str Scalar
	Dex Scalar
	Con Scalar
	Int Scalar
	Wis Scalar
	Cha Scalar
}

// Values returns the six scores in STR/DEX/CON/INT/WIS/CHA order.
func (a AbilityScores) Values() []Scalar {
	return []Scalar{a.Str, a.Dex, a.Con, a.Int, a.Wis, a.Cha}
}

// Skills holds the skill entries and optional racial modifiers, both in
// record order.
type Skills struct {
	Entries    []SkillEntry
	RacialMods []RacialMod
}

// Perception returns the Perception modifier if the skill is present.
func (s *Skills) Perception() (*int, bool) {
	if s == nil {
		return nil, false
	}
	for _, e := range s.Entries {
		if e.Name == "Perception" {
			return e.Mod, true
		}
	}
	return nil, false
}

// SkillEntry is one skill with its modifier; a nil Mod is the database's
// absence marker and renders blank.
type SkillEntry struct {
	Name string
	Mod  *int
}

// RacialMod is one racial skill modifier in one of three shapes:
// a direct value on a skill, a free-text entry (empty Skill), or a
// nested mapping iterated key-by-key (non-nil Subs).
type RacialMod struct {
	Skill string
	Value Scalar
	Subs  Fields
}

// Ecology holds the environment/organization/treasure sub-block.
type Ecology struct {
	Environment  Scalar
	Organization Scalar
	TreasureType Scalar
	Treasure     []string
}

// SpellBlock holds prepared/known spellcasting metadata.
type SpellBlock struct {
	Sources []SpellSource
	Entries []SpellEntry
}

// SpellSource is one casting source with its caster level and slot table.
type SpellSource struct {
	Type  string
	CL    Scalar
	Slots Fields
}

// SpellEntry is one spell at one level with optional count and DC.
type SpellEntry struct {
	Level string
	Name  string
	Count Scalar
	DC    Scalar
}

// PsychicBlock holds psychic-magic metadata keyed by point energy.
type PsychicBlock struct {
	PE      Scalar
	Sources []PsychicSource
	Entries []PsychicEntry
}

// PsychicSource is one psychic source with caster level and concentration.
type PsychicSource struct {
	CL            Scalar
	Concentration int
}

// PsychicEntry is one psychic ability with optional PE cost and DC.
type PsychicEntry struct {
	Name string
	PE   Scalar
	DC   Scalar
}

// SLABlock holds spell-like ability metadata.
type SLABlock struct {
	Sources []SLASource
	Entries []SLAEntry
}

// SLASource is one spell-like ability source. A "default" name renders
// as an unlabeled header.
type SLASource struct {
	Name          string
	CL            Scalar
	Concentration *int
}

// SLAEntry is one spell-like ability in one frequency bucket.
type SLAEntry struct {
	Source string
	Name   string
	Freq   string
	DC     Scalar
}

// SourceRef is one book reference (name plus page text).
type SourceRef struct {
	Name string
	Page Scalar
}

// PresentKeys returns the record's top-level field names in corpus order.
func (r *MonsterRecord) PresentKeys() []string {
	return r.present
}

// UnknownKeys returns top-level field names the converter does not consume.
func (r *MonsterRecord) UnknownKeys() []string {
	var unknown []string
	for _, k := range r.present {
		if !recognizedKeys[k] {
			unknown = append(unknown, k)
		}
	}
	return unknown
}

// recognizedKeys is the set of top-level record fields the formatter
// consumes. Anything outside this set shows up in the key-usage report.
var recognizedKeys = map[string]bool{
	"title1": true, "title2": true,
	"CR": true, "XP": true, "race": true, "classes": true,
	"alignment": true, "size": true, "type": true, "subtypes": true,
	"initiative": true, "senses": true, "auras": true,
	"AC": true, "HP": true, "saves": true,
	"immunities": true, "resistances": true, "DR": true,
	"defensive_abilities": true, "SR": true, "weaknesses": true,
	"speeds": true, "attacks": true, "space": true,
	"reach": true, "reach_other": true, "tactics": true,
	"ability_scores": true, "BAB": true,
	"CMB": true, "CMB_other": true, "CMD": true, "CMD_other": true,
	"feats": true, "skills": true, "languages": true,
	"special_qualities": true, "gear": true, "ecology": true,
	"special_abilities": true, "spells": true, "psychic_magic": true,
	"spell_like_abilities": true, "sources": true,
	"desc_short": true, "desc_long": true,
}

// ParseRecord converts one decoded corpus entry into a typed MonsterRecord.
// Absence of a required field or an unrecognized sub-structure shape is a
// per-record error; the caller logs it with the corpus key and moves on.
func ParseRecord(key string, raw Fields) (*MonsterRecord, error) {
	p := &recordParser{key: key, raw: raw}

	rec := &MonsterRecord{Key: key, present: raw.Keys()}

	rec.Title1 = p.optString("title1")
	title2, err := p.requireString("title2")
	if err != nil {
		return nil, err
	}
	rec.Title2 = title2

	if rec.CR, err = p.requireScalar("CR"); err != nil {
		return nil, err
	}
	if rec.XP, err = p.requireScalar("XP"); err != nil {
		return nil, err
	}
	rec.Race = p.optScalar("race")
	if rec.Classes, err = p.optStringList("classes"); err != nil {
		return nil, err
	}
	if rec.Alignment, err = p.requireScalar("alignment"); err != nil {
		return nil, err
	}
	if rec.Size, err = p.requireScalar("size"); err != nil {
		return nil, err
	}
	if rec.Type, err = p.requireScalar("type"); err != nil {
		return nil, err
	}
	if rec.Subtypes, err = p.optStringList("subtypes"); err != nil {
		return nil, err
	}

	if rec.Initiative, err = p.parseInitiative(); err != nil {
		return nil, err
	}
	if rec.Senses, err = p.optFields("senses"); err != nil {
		return nil, err
	}
	if rec.Auras, err = p.parseAuras(); err != nil {
		return nil, err
	}

	if rec.AC, err = p.parseAC(); err != nil {
		return nil, err
	}
	if rec.HP, err = p.parseHP(); err != nil {
		return nil, err
	}
	if rec.Saves, err = p.parseSaves(); err != nil {
		return nil, err
	}

	if rec.Immunities, err = p.optStringList("immunities"); err != nil {
		return nil, err
	}
	if rec.Resistances, err = p.optFields("resistances"); err != nil {
		return nil, err
	}
	if rec.DR, err = p.parseDR(); err != nil {
		return nil, err
	}
	if rec.DefensiveAbilities, err = p.optStringList("defensive_abilities"); err != nil {
		return nil, err
	}
	rec.SR = p.optScalar("SR")
	if rec.Weaknesses, err = p.optStringList("weaknesses"); err != nil {
		return nil, err
	}

	if rec.Speeds, err = p.requireFields("speeds"); err != nil {
		return nil, err
	}

	if rec.Attacks, err = p.parseAttacks(); err != nil {
		return nil, err
	}

	rec.Space = p.optScalar("space")
	rec.Reach = p.optScalar("reach")
	rec.ReachOther = p.optScalar("reach_other")

	if rec.Tactics, err = p.parseNamedTexts("tactics"); err != nil {
		return nil, err
	}

	if rec.AbilityScores, err = p.parseAbilityScores(); err != nil {
		return nil, err
	}
	if rec.BAB, err = p.requireScalar("BAB"); err != nil {
		return nil, err
	}
	if rec.CMB, err = p.requireScalar("CMB"); err != nil {
		return nil, err
	}
	rec.CMBOther = p.optScalar("CMB_other")
	if rec.CMD, err = p.requireScalar("CMD"); err != nil {
		return nil, err
	}
	rec.CMDOther = p.optScalar("CMD_other")

	if rec.Feats, err = p.parseFeats(); err != nil {
		return nil, err
	}
	if rec.Skills, err = p.parseSkills(); err != nil {
		return nil, err
	}

	if rec.Languages, err = p.optStringList("languages"); err != nil {
		return nil, err
	}
	if rec.SpecialQualities, err = p.optStringList("special_qualities"); err != nil {
		return nil, err
	}
	if rec.Gear, err = p.parseGear(); err != nil {
		return nil, err
	}
	if rec.Ecology, err = p.parseEcology(); err != nil {
		return nil, err
	}
	if rec.SpecialAbilities, err = p.parseNamedTexts("special_abilities"); err != nil {
		return nil, err
	}

	if rec.Spells, err = p.parseSpells(); err != nil {
		return nil, err
	}
	if rec.PsychicMagic, err = p.parsePsychicMagic(); err != nil {
		return nil, err
	}
	if rec.SpellLikeAbilities, err = p.parseSLA(); err != nil {
		return nil, err
	}

	if rec.Sources, err = p.parseSources(); err != nil {
		return nil, err
	}
	rec.DescShort = p.optScalar("desc_short")
	rec.DescLong = p.optScalar("desc_long")

	return rec, nil
}

// recordParser carries the corpus key so every error names its record.
type recordParser struct {
	key string
	raw Fields
}

func (p *recordParser) missing(field string) error {
	return errors.NewMissingFieldError(p.key, field)
}

func (p *recordParser) badShape(path string, got any) error {
	return errors.NewUnexpectedShapeError(p.key, path, got)
}

func (p *recordParser) requireScalar(name string) (Scalar, error) {
	v, ok := p.raw.Get(name)
	if !ok {
		return Scalar{}, p.missing(name)
	}
	return NewScalar(v), nil
}

func (p *recordParser) optScalar(name string) Scalar {
	v, ok := p.raw.Get(name)
	if !ok {
		return Scalar{}
	}
	return NewScalar(v)
}

func (p *recordParser) requireString(name string) (string, error) {
	v, ok := p.raw.Get(name)
	if !ok {
		return "", p.missing(name)
	}
	s, ok := v.(string)
	if !ok {
		return "", p.badShape(name, v)
	}
	return s, nil
}

func (p *recordParser) optString(name string) string {
	v, ok := p.raw.Get(name)
	if !ok {
		return ""
	}
	return FormatScalar(v)
}

// optStringList decodes an optional list field; elements are stringified
// the way the document renders them. The returned slice is non-nil
// whenever the field was present.
func (p *recordParser) optStringList(name string) ([]string, error) {
	v, ok := p.raw.Get(name)
	if !ok {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, p.badShape(name, v)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, FormatScalar(item))
	}
	return out, nil
}

func (p *recordParser) optFields(name string) (Fields, error) {
	v, ok := p.raw.Get(name)
	if !ok {
		return nil, nil
	}
	fields, ok := fieldsFrom(v)
	if !ok {
		return nil, p.badShape(name, v)
	}
	return fields, nil
}

func (p *recordParser) requireFields(name string) (Fields, error) {
	fields, err := p.optFields(name)
	if err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, p.missing(name)
	}
	return fields, nil
}

// subInt coerces a nested value to an int, erroring with its path.
func (p *recordParser) subInt(v any, path string) (int, error) {
	n, ok := AsInt(v)
	if !ok {
		return 0, p.badShape(path, v)
	}
	return n, nil
}

func (p *recordParser) parseInitiative() (Initiative, error) {
	fields, err := p.requireFields("initiative")
	if err != nil {
		return Initiative{}, err
	}
	bonusVal, ok := fields.Get("bonus")
	if !ok {
		return Initiative{}, p.missing("initiative.bonus")
	}

	var ini Initiative
	if abilityVal, ok := fields.Get("ability"); ok {
		ini.Ability = NewScalar(abilityVal)
	}

	if n, ok := AsInt(bonusVal); ok {
		ini.Bonus = SingleBonus(n)
		return ini, nil
	}
	list, ok := bonusVal.([]any)
	if !ok {
		return Initiative{}, p.badShape("initiative.bonus", bonusVal)
	}
	values := make([]int, 0, len(list))
	for i, item := range list {
		n, err := p.subInt(item, fmt.Sprintf("initiative.bonus[%d]", i))
		if err != nil {
			return Initiative{}, err
		}
		values = append(values, n)
	}
	ini.Bonus = MultiBonus(values)
	return ini, nil
}

func (p *recordParser) parseAuras() ([]string, error) {
	v, ok := p.raw.Get("auras")
	if !ok {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, p.badShape("auras", v)
	}
	names := make([]string, 0, len(list))
	for i, item := range list {
		fields, ok := fieldsFrom(item)
		if !ok {
			return nil, p.badShape(fmt.Sprintf("auras[%d]", i), item)
		}
		name, ok := fields.Get("name")
		if !ok {
			return nil, p.missing(fmt.Sprintf("auras[%d].name", i))
		}
		names = append(names, FormatScalar(name))
	}
	return names, nil
}

func (p *recordParser) parseAC() (ArmorClass, error) {
	fields, err := p.requireFields("AC")
	if err != nil {
		return ArmorClass{}, err
	}
	var ac ArmorClass
	for _, sub := range []struct {
		name string
		dst  *Scalar
	}{
		{"AC", &ac.AC},
		{"touch", &ac.Touch},
		{"flat_footed", &ac.FlatFooted},
	} {
		v, ok := fields.Get(sub.name)
		if !ok {
			return ArmorClass{}, p.missing("AC." + sub.name)
		}
		*sub.dst = NewScalar(v)
	}
	if comps, ok := fields.Get("components"); ok {
		ac.Components, ok = fieldsFrom(comps)
		if !ok {
			return ArmorClass{}, p.badShape("AC.components", comps)
		}
	}
	return ac, nil
}

func (p *recordParser) parseHP() (HitPoints, error) {
	fields, err := p.requireFields("HP")
	if err != nil {
		return HitPoints{}, err
	}
	var hp HitPoints
	v, ok := fields.Get("HP")
	if !ok {
		return HitPoints{}, p.missing("HP.HP")
	}
	hp.HP = NewScalar(v)
	long, ok := fields.Get("long")
	if !ok {
		return HitPoints{}, p.missing("HP.long")
	}
	hp.Long = NewScalar(long)

	hp.Extra = make(Fields, 0, len(fields))
	for _, item := range fields {
		if item.Key == "HP" || item.Key == "long" {
			continue
		}
		hp.Extra = append(hp.Extra, item)
	}
	return hp, nil
}

func (p *recordParser) parseSaves() (Saves, error) {
	fields, err := p.requireFields("saves")
	if err != nil {
		return Saves{}, err
	}
	var saves Saves
	for _, sub := range []struct {
		name string
		dst  *int
	}{
		{"fort", &saves.Fort},
		{"ref", &saves.Ref},
		{"will", &saves.Will},
	} {
		v, ok := fields.Get(sub.name)
		if !ok {
			return Saves{}, p.missing("saves." + sub.name)
		}
		if *sub.dst, err = p.subInt(v, "saves."+sub.name); err != nil {
			return Saves{}, err
		}
	}
	if other, ok := fields.Get("other"); ok {
		saves.Other = NewScalar(other)
	}
	return saves, nil
}

func (p *recordParser) parseDR() ([]DamageReduction, error) {
	v, ok := p.raw.Get("DR")
	if !ok {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, p.badShape("DR", v)
	}
	out := make([]DamageReduction, 0, len(list))
	for i, item := range list {
		fields, ok := fieldsFrom(item)
		if !ok {
			return nil, p.badShape(fmt.Sprintf("DR[%d]", i), item)
		}
		amount, ok := fields.Get("amount")
		if !ok {
			return nil, p.missing(fmt.Sprintf("DR[%d].amount", i))
		}
		weakness, ok := fields.Get("weakness")
		if !ok {
			return nil, p.missing(fmt.Sprintf("DR[%d].weakness", i))
		}
		out = append(out, DamageReduction{
			Amount:   NewScalar(amount),
			Weakness: FormatScalar(weakness),
		})
	}
	return out, nil
}

func (p *recordParser) parseAttacks() (Attacks, error) {
	v, ok := p.raw.Get("attacks")
	if !ok {
		return Attacks{}, nil
	}
	fields, ok := fieldsFrom(v)
	if !ok {
		return Attacks{}, p.badShape("attacks", v)
	}

	var atk Attacks
	var err error
	if atk.Melee, err = p.parseAttackGroup(fields, "melee"); err != nil {
		return Attacks{}, err
	}
	if atk.Ranged, err = p.parseAttackGroup(fields, "ranged"); err != nil {
		return Attacks{}, err
	}
	if special, ok := fields.Get("special"); ok {
		list, ok := special.([]any)
		if !ok {
			return Attacks{}, p.badShape("attacks.special", special)
		}
		atk.Special = make([]string, 0, len(list))
		for _, item := range list {
			atk.Special = append(atk.Special, FormatScalar(item))
		}
	}
	return atk, nil
}

// parseAttackGroup extracts the text of each attack in the first group of
// a melee/ranged attack list. Only the first group is rendered; the
// database stores alternative full-attack routines in later groups.
func (p *recordParser) parseAttackGroup(fields Fields, name string) ([]string, error) {
	v, ok := fields.Get(name)
	if !ok {
		return nil, nil
	}
	groups, ok := v.([]any)
	if !ok {
		return nil, p.badShape("attacks."+name, v)
	}
	if len(groups) == 0 {
		return []string{}, nil
	}
	first, ok := groups[0].([]any)
	if !ok {
		return nil, p.badShape("attacks."+name+"[0]", groups[0])
	}
	texts := make([]string, 0, len(first))
	for i, item := range first {
		entry, ok := fieldsFrom(item)
		if !ok {
			return nil, p.badShape(fmt.Sprintf("attacks.%s[0][%d]", name, i), item)
		}
		text, ok := entry.Get("text")
		if !ok {
			return nil, p.missing(fmt.Sprintf("attacks.%s[0][%d].text", name, i))
		}
		texts = append(texts, FormatScalar(text))
	}
	return texts, nil
}

// parseNamedTexts decodes an optional name-to-text mapping (tactics,
// special abilities) preserving record order.
func (p *recordParser) parseNamedTexts(name string) ([]NamedText, error) {
	v, ok := p.raw.Get(name)
	if !ok {
		return nil, nil
	}
	fields, ok := fieldsFrom(v)
	if !ok {
		return nil, p.badShape(name, v)
	}
	out := make([]NamedText, 0, len(fields))
	for _, item := range fields {
		out = append(out, NamedText{Name: item.Key, Text: FormatScalar(item.Value)})
	}
	return out, nil
}

func (p *recordParser) parseAbilityScores() (AbilityScores, error) {
	fields, err := p.requireFields("ability_scores")
	if err != nil {
		return AbilityScores{}, err
	}
	var scores AbilityScores
	for _, sub := range []struct {
		name string
		dst  *Scalar
	}{
		{"STR", &scores.Str},
		{"DEX", &scores.Dex},
		{"CON", &scores.Con},
		{"INT", &scores.Int},
		{"WIS", &scores.Wis},
		{"CHA", &scores.Cha},
	} {
		v, ok := fields.Get(sub.name)
		if !ok {
			return AbilityScores{}, p.missing("ability_scores." + sub.name)
		}
		*sub.dst = NewScalar(v)
	}
	return scores, nil
}

func (p *recordParser) parseFeats() ([]string, error) {
	v, ok := p.raw.Get("feats")
	if !ok {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, p.badShape("feats", v)
	}
	names := make([]string, 0, len(list))
	for i, item := range list {
		fields, ok := fieldsFrom(item)
		if !ok {
			return nil, p.badShape(fmt.Sprintf("feats[%d]", i), item)
		}
		name, ok := fields.Get("name")
		if !ok {
			return nil, p.missing(fmt.Sprintf("feats[%d].name", i))
		}
		names = append(names, FormatScalar(name))
	}
	return names, nil
}

func (p *recordParser) parseSkills() (*Skills, error) {
	v, ok := p.raw.Get("skills")
	if !ok {
		return nil, nil
	}
	fields, ok := fieldsFrom(v)
	if !ok {
		return nil, p.badShape("skills", v)
	}

	skills := &Skills{Entries: make([]SkillEntry, 0, len(fields))}
	for _, item := range fields {
		if item.Key == "_racial_mods" {
			mods, err := p.parseRacialMods(item.Value)
			if err != nil {
				return nil, err
			}
			skills.RacialMods = mods
			continue
		}
		sub, ok := fieldsFrom(item.Value)
		if !ok {
			return nil, p.badShape("skills."+item.Key, item.Value)
		}
		modVal, ok := sub.Get("_")
		if !ok {
			return nil, p.missing("skills." + item.Key + "._")
		}
		entry := SkillEntry{Name: item.Key}
		if modVal != nil {
			n, err := p.subInt(modVal, "skills."+item.Key+"._")
			if err != nil {
				return nil, err
			}
			entry.Mod = &n
		}
		skills.Entries = append(skills.Entries, entry)
	}
	return skills, nil
}

// parseRacialMods handles the three racial-modifier shapes. Anything else
// is a per-record error, not a fatal one.
func (p *recordParser) parseRacialMods(v any) ([]RacialMod, error) {
	fields, ok := fieldsFrom(v)
	if !ok {
		return nil, p.badShape("skills._racial_mods", v)
	}
	mods := make([]RacialMod, 0, len(fields))
	for _, item := range fields {
		path := "skills._racial_mods." + item.Key
		if sub, ok := fieldsFrom(item.Value); ok {
			if direct, ok := sub.Get("_"); ok {
				mods = append(mods, RacialMod{Skill: item.Key, Value: NewScalar(direct)})
				continue
			}
			mods = append(mods, RacialMod{Skill: item.Key, Subs: sub})
			continue
		}
		if item.Key == "_other" {
			mods = append(mods, RacialMod{Value: NewScalar(item.Value)})
			continue
		}
		return nil, p.badShape(path, item.Value)
	}
	return mods, nil
}

func (p *recordParser) parseGear() ([]NamedList, error) {
	v, ok := p.raw.Get("gear")
	if !ok {
		return nil, nil
	}
	fields, ok := fieldsFrom(v)
	if !ok {
		return nil, p.badShape("gear", v)
	}
	out := make([]NamedList, 0, len(fields))
	for _, item := range fields {
		list, ok := item.Value.([]any)
		if !ok {
			return nil, p.badShape("gear."+item.Key, item.Value)
		}
		items := make([]string, 0, len(list))
		for _, g := range list {
			items = append(items, FormatScalar(g))
		}
		out = append(out, NamedList{Name: item.Key, Items: items})
	}
	return out, nil
}

func (p *recordParser) parseEcology() (*Ecology, error) {
	v, ok := p.raw.Get("ecology")
	if !ok {
		return nil, nil
	}
	fields, ok := fieldsFrom(v)
	if !ok {
		return nil, p.badShape("ecology", v)
	}
	eco := &Ecology{}
	if env, ok := fields.Get("environment"); ok {
		eco.Environment = NewScalar(env)
	}
	if org, ok := fields.Get("organization"); ok {
		eco.Organization = NewScalar(org)
	}
	if tt, ok := fields.Get("treasure_type"); ok {
		eco.TreasureType = NewScalar(tt)
	}
	if treasure, ok := fields.Get("treasure"); ok {
		list, ok := treasure.([]any)
		if !ok {
			return nil, p.badShape("ecology.treasure", treasure)
		}
		eco.Treasure = make([]string, 0, len(list))
		for _, item := range list {
			eco.Treasure = append(eco.Treasure, FormatScalar(item))
		}
	}
	return eco, nil
}

func (p *recordParser) parseSpells() (*SpellBlock, error) {
	v, ok := p.raw.Get("spells")
	if !ok {
		return nil, nil
	}
	fields, ok := fieldsFrom(v)
	if !ok {
		return nil, p.badShape("spells", v)
	}

	block := &SpellBlock{}
	sources, err := p.entryList(fields, "spells", "sources")
	if err != nil {
		return nil, err
	}
	for i, src := range sources {
		path := fmt.Sprintf("spells.sources[%d]", i)
		cl, ok := src.Get("CL")
		if !ok {
			return nil, p.missing(path + ".CL")
		}
		source := SpellSource{CL: NewScalar(cl)}
		if typ, ok := src.Get("type"); ok {
			source.Type = FormatScalar(typ)
		}
		if slots, ok := src.Get("slots"); ok {
			source.Slots, ok = fieldsFrom(slots)
			if !ok {
				return nil, p.badShape(path+".slots", slots)
			}
		}
		block.Sources = append(block.Sources, source)
	}

	entries, err := p.entryList(fields, "spells", "entries")
	if err != nil {
		return nil, err
	}
	for i, src := range entries {
		path := fmt.Sprintf("spells.entries[%d]", i)
		name, ok := src.Get("name")
		if !ok {
			return nil, p.missing(path + ".name")
		}
		level, ok := src.Get("level")
		if !ok {
			return nil, p.missing(path + ".level")
		}
		entry := SpellEntry{Name: FormatScalar(name), Level: FormatScalar(level)}
		if count, ok := src.Get("count"); ok {
			entry.Count = NewScalar(count)
		}
		if dc, ok := src.Get("DC"); ok {
			entry.DC = NewScalar(dc)
		}
		block.Entries = append(block.Entries, entry)
	}
	return block, nil
}

func (p *recordParser) parsePsychicMagic() (*PsychicBlock, error) {
	v, ok := p.raw.Get("psychic_magic")
	if !ok {
		return nil, nil
	}
	fields, ok := fieldsFrom(v)
	if !ok {
		return nil, p.badShape("psychic_magic", v)
	}

	block := &PsychicBlock{}
	pe, ok := fields.Get("PE")
	if !ok {
		return nil, p.missing("psychic_magic.PE")
	}
	block.PE = NewScalar(pe)

	sources, err := p.entryList(fields, "psychic_magic", "sources")
	if err != nil {
		return nil, err
	}
	for i, src := range sources {
		path := fmt.Sprintf("psychic_magic.sources[%d]", i)
		cl, ok := src.Get("CL")
		if !ok {
			return nil, p.missing(path + ".CL")
		}
		conc, ok := src.Get("concentration")
		if !ok {
			return nil, p.missing(path + ".concentration")
		}
		n, err := p.subInt(conc, path+".concentration")
		if err != nil {
			return nil, err
		}
		block.Sources = append(block.Sources, PsychicSource{CL: NewScalar(cl), Concentration: n})
	}

	entries, err := p.entryList(fields, "psychic_magic", "entries")
	if err != nil {
		return nil, err
	}
	for i, src := range entries {
		path := fmt.Sprintf("psychic_magic.entries[%d]", i)
		name, ok := src.Get("name")
		if !ok {
			return nil, p.missing(path + ".name")
		}
		entry := PsychicEntry{Name: FormatScalar(name)}
		if pe, ok := src.Get("PE"); ok {
			entry.PE = NewScalar(pe)
		}
		if dc, ok := src.Get("DC"); ok {
			entry.DC = NewScalar(dc)
		}
		block.Entries = append(block.Entries, entry)
	}
	return block, nil
}

func (p *recordParser) parseSLA() (*SLABlock, error) {
	v, ok := p.raw.Get("spell_like_abilities")
	if !ok {
		return nil, nil
	}
	fields, ok := fieldsFrom(v)
	if !ok {
		return nil, p.badShape("spell_like_abilities", v)
	}

	block := &SLABlock{}
	sources, err := p.entryList(fields, "spell_like_abilities", "sources")
	if err != nil {
		return nil, err
	}
	for i, src := range sources {
		path := fmt.Sprintf("spell_like_abilities.sources[%d]", i)
		name, ok := src.Get("name")
		if !ok {
			return nil, p.missing(path + ".name")
		}
		cl, ok := src.Get("CL")
		if !ok {
			return nil, p.missing(path + ".CL")
		}
		source := SLASource{Name: FormatScalar(name), CL: NewScalar(cl)}
		if conc, ok := src.Get("concentration"); ok {
			n, err := p.subInt(conc, path+".concentration")
			if err != nil {
				return nil, err
			}
			source.Concentration = &n
		}
		block.Sources = append(block.Sources, source)
	}

	entries, err := p.entryList(fields, "spell_like_abilities", "entries")
	if err != nil {
		return nil, err
	}
	for i, src := range entries {
		path := fmt.Sprintf("spell_like_abilities.entries[%d]", i)
		name, ok := src.Get("name")
		if !ok {
			return nil, p.missing(path + ".name")
		}
		source, ok := src.Get("source")
		if !ok {
			return nil, p.missing(path + ".source")
		}
		freq, ok := src.Get("freq")
		if !ok {
			return nil, p.missing(path + ".freq")
		}
		entry := SLAEntry{
			Source: FormatScalar(source),
			Name:   FormatScalar(name),
			Freq:   FormatScalar(freq),
		}
		if dc, ok := src.Get("DC"); ok {
			entry.DC = NewScalar(dc)
		}
		block.Entries = append(block.Entries, entry)
	}
	return block, nil
}

// entryList decodes a list-of-mappings sub-field (spell sources/entries).
func (p *recordParser) entryList(fields Fields, parent, name string) ([]Fields, error) {
	v, ok := fields.Get(name)
	if !ok {
		return nil, p.missing(parent + "." + name)
	}
	list, ok := v.([]any)
	if !ok {
		return nil, p.badShape(parent+"."+name, v)
	}
	out := make([]Fields, 0, len(list))
	for i, item := range list {
		entry, ok := fieldsFrom(item)
		if !ok {
			return nil, p.badShape(fmt.Sprintf("%s.%s[%d]", parent, name, i), item)
		}
		out = append(out, entry)
	}
	return out, nil
}

// parseSources decodes the sources list. The source line at the top of
// every statblock derives from the first entry, so the list is required
// and every entry needs a string name and a page.
func (p *recordParser) parseSources() ([]SourceRef, error) {
	v, ok := p.raw.Get("sources")
	if !ok {
		return nil, p.missing("sources")
	}
	list, ok := v.([]any)
	if !ok {
		return nil, p.badShape("sources", v)
	}
	if len(list) == 0 {
		return nil, p.missing("sources[0]")
	}
	out := make([]SourceRef, 0, len(list))
	for i, item := range list {
		fields, ok := fieldsFrom(item)
		if !ok {
			return nil, p.badShape(fmt.Sprintf("sources[%d]", i), item)
		}
		nameVal, ok := fields.Get("name")
		if !ok {
			return nil, p.missing(fmt.Sprintf("sources[%d].name", i))
		}
		name, ok := nameVal.(string)
		if !ok {
			return nil, p.badShape(fmt.Sprintf("sources[%d].name", i), nameVal)
		}
		page, ok := fields.Get("page")
		if !ok {
			return nil, p.missing(fmt.Sprintf("sources[%d].page", i))
		}
		out = append(out, SourceRef{Name: name, Page: NewScalar(page)})
	}
	return out, nil
}
