package bestiary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beastforge/beastforge/pkg/errors"
)

const goblinDogJSON = `{
	"title2": "Goblin Dog",
	"CR": 1,
	"XP": 400,
	"alignment": "N",
	"size": "Medium",
	"type": "animal",
	"initiative": {"bonus": 2},
	"senses": {"low-light vision": true, "scent": true},
	"AC": {"AC": 13, "touch": 12, "flat_footed": 11, "components": {"dex": 2, "natural": 1}},
	"HP": {"HP": 9, "long": "9 (1d8+5)"},
	"saves": {"fort": 5, "ref": 4, "will": 1},
	"speeds": {"base": 40},
	"ability_scores": {"STR": 15, "DEX": 14, "CON": 15, "INT": 2, "WIS": 12, "CHA": 8},
	"BAB": 0,
	"CMB": 2,
	"CMD": 14,
	"skills": {"Perception": {"_": 1}, "Stealth": {"_": 6}, "_racial_mods": {"Stealth": {"_": 4}}},
	"sources": [{"name": "Bestiary", "page": 157}]
}`

// parseRaw decodes a single-record fixture the way the corpus loader
// does, so parser tests see the same value types as production.
func parseRaw(t *testing.T, record string) Fields {
	t.Helper()
	corpus, err := Parse([]byte(`{"test-key": `+record+`}`), "fixture")
	require.NoError(t, err)
	entry, err := corpus.At(0)
	require.NoError(t, err)
	return entry.Raw
}

// without returns a copy of raw with one top-level field removed.
func without(raw Fields, key string) Fields {
	out := make(Fields, 0, len(raw))
	for _, item := range raw {
		if item.Key != key {
			out = append(out, item)
		}
	}
	return out
}

func TestParseRecordComplete(t *testing.T) {
	rec, err := ParseRecord("test-key", parseRaw(t, goblinDogJSON))
	require.NoError(t, err)

	assert.Equal(t, "Goblin Dog", rec.Title2)
	assert.Equal(t, "1", rec.CR.String())
	assert.Equal(t, "400", rec.XP.String())
	assert.Equal(t, "N", rec.Alignment.String())

	assert.False(t, rec.Initiative.Bonus.IsMulti())
	assert.Equal(t, []int{2}, rec.Initiative.Bonus.Values())

	assert.Equal(t, []string{"low-light vision", "scent"}, rec.Senses.Keys())

	assert.Equal(t, "13", rec.AC.AC.String())
	assert.Equal(t, "12", rec.AC.Touch.String())
	assert.Equal(t, "11", rec.AC.FlatFooted.String())
	assert.Equal(t, []string{"dex", "natural"}, rec.AC.Components.Keys())

	assert.Equal(t, "9", rec.HP.HP.String())
	assert.Equal(t, "9 (1d8+5)", rec.HP.Long.String())
	assert.Empty(t, rec.HP.Extra)

	assert.Equal(t, 5, rec.Saves.Fort)
	assert.Equal(t, 4, rec.Saves.Ref)
	assert.Equal(t, 1, rec.Saves.Will)

	values := rec.AbilityScores.Values()
	require.Len(t, values, 6)
	assert.Equal(t, "15", values[0].String())
	assert.Equal(t, "8", values[5].String())

	require.NotNil(t, rec.Skills)
	mod, ok := rec.Skills.Perception()
	require.True(t, ok)
	require.NotNil(t, mod)
	assert.Equal(t, 1, *mod)

	require.Len(t, rec.Skills.RacialMods, 1)
	assert.Equal(t, "Stealth", rec.Skills.RacialMods[0].Skill)
	assert.Equal(t, "4", rec.Skills.RacialMods[0].Value.String())

	require.Len(t, rec.Sources, 1)
	assert.Equal(t, "Bestiary", rec.Sources[0].Name)
	assert.Equal(t, "157", rec.Sources[0].Page.String())
}

func TestParseRecordMissingRequiredFields(t *testing.T) {
	required := []string{
		"title2", "CR", "XP", "alignment", "size", "type",
		"initiative", "AC", "HP", "saves", "speeds",
		"ability_scores", "BAB", "CMB", "CMD", "sources",
	}
	raw := parseRaw(t, goblinDogJSON)

	for _, field := range required {
		t.Run(field, func(t *testing.T) {
			_, err := ParseRecord("test-key", without(raw, field))
			require.Error(t, err)
			assert.True(t, errors.IsRecordError(err))
		})
	}
}

func TestParseRecordOptionalFieldsAbsent(t *testing.T) {
	rec, err := ParseRecord("test-key", parseRaw(t, goblinDogJSON))
	require.NoError(t, err)

	assert.Nil(t, rec.Immunities)
	assert.Nil(t, rec.Resistances)
	assert.Nil(t, rec.DR)
	assert.Nil(t, rec.Auras)
	assert.Nil(t, rec.Spells)
	assert.Nil(t, rec.Ecology)
	assert.False(t, rec.Race.IsSet())
	assert.False(t, rec.SR.IsSet())
}

func TestParseRecordEmptyListIsPresent(t *testing.T) {
	raw := parseRaw(t, goblinDogJSON).Set("immunities", []any{})
	rec, err := ParseRecord("test-key", raw)
	require.NoError(t, err)

	// Present-but-empty is distinct from absent.
	assert.NotNil(t, rec.Immunities)
	assert.Empty(t, rec.Immunities)
}

func TestParseRecordMultiFormInitiative(t *testing.T) {
	raw := parseRaw(t, `{
		"title2": "Shapechanger",
		"CR": 2, "XP": 600, "alignment": "N", "size": "Medium", "type": "humanoid",
		"initiative": {"bonus": [2, 4], "ability": "Dex"},
		"AC": {"AC": 14, "touch": 12, "flat_footed": 12},
		"HP": {"HP": 18, "long": "18 (2d8+9)"},
		"saves": {"fort": 3, "ref": 4, "will": 2},
		"speeds": {"base": 30},
		"ability_scores": {"STR": 13, "DEX": 15, "CON": 14, "INT": 10, "WIS": 11, "CHA": 10},
		"BAB": 1, "CMB": 2, "CMD": 14,
		"sources": [{"name": "Bestiary 2", "page": 10}]
	}`)
	rec, err := ParseRecord("test-key", raw)
	require.NoError(t, err)

	assert.True(t, rec.Initiative.Bonus.IsMulti())
	assert.Equal(t, []int{2, 4}, rec.Initiative.Bonus.Values())
	assert.Equal(t, "Dex", rec.Initiative.Ability.String())
}

func TestParseRecordBadInitiativeShape(t *testing.T) {
	raw := parseRaw(t, goblinDogJSON).Set("initiative", Fields{{Key: "bonus", Value: "fast"}})
	_, err := ParseRecord("test-key", raw)
	require.Error(t, err)
	assert.True(t, errors.IsRecordError(err))
}

func TestParseRecordHPExtra(t *testing.T) {
	raw := parseRaw(t, goblinDogJSON).Set("HP", Fields{
		{Key: "HP", Value: 52},
		{Key: "long", Value: "52 (7d8+21)"},
		{Key: "fast_healing", Value: 5},
		{Key: "regeneration", Value: "5 (acid)"},
	})
	rec, err := ParseRecord("test-key", raw)
	require.NoError(t, err)

	assert.Equal(t, []string{"fast_healing", "regeneration"}, rec.HP.Extra.Keys())
}

func TestParseRecordRacialModShapes(t *testing.T) {
	raw := parseRaw(t, goblinDogJSON).Set("skills", Fields{
		{Key: "Acrobatics", Value: Fields{{Key: "_", Value: 8}}},
		{Key: "_racial_mods", Value: Fields{
			{Key: "Acrobatics", Value: Fields{{Key: "when jumping", Value: "+4"}}},
			{Key: "Stealth", Value: Fields{{Key: "_", Value: 4}}},
			{Key: "_other", Value: "+4 Acrobatics when charging"},
		}},
	})
	rec, err := ParseRecord("test-key", raw)
	require.NoError(t, err)

	mods := rec.Skills.RacialMods
	require.Len(t, mods, 3)

	assert.Equal(t, "Acrobatics", mods[0].Skill)
	assert.NotNil(t, mods[0].Subs)

	assert.Equal(t, "Stealth", mods[1].Skill)
	assert.Equal(t, "4", mods[1].Value.String())

	assert.Equal(t, "", mods[2].Skill)
	assert.Equal(t, "+4 Acrobatics when charging", mods[2].Value.String())
}

func TestParseRecordBadRacialModShape(t *testing.T) {
	raw := parseRaw(t, goblinDogJSON).Set("skills", Fields{
		{Key: "Stealth", Value: Fields{{Key: "_", Value: 6}}},
		{Key: "_racial_mods", Value: Fields{{Key: "Stealth", Value: 4}}},
	})
	_, err := ParseRecord("test-key", raw)
	require.Error(t, err)
	assert.True(t, errors.IsRecordError(err))
}

func TestParseRecordSkillWithoutModifier(t *testing.T) {
	raw := parseRaw(t, goblinDogJSON).Set("skills", Fields{
		{Key: "Craft (traps)", Value: Fields{{Key: "_", Value: nil}}},
	})
	rec, err := ParseRecord("test-key", raw)
	require.NoError(t, err)

	require.Len(t, rec.Skills.Entries, 1)
	assert.Nil(t, rec.Skills.Entries[0].Mod)
}

func TestParseRecordSpells(t *testing.T) {
	raw := parseRaw(t, goblinDogJSON).Set("spells", Fields{
		{Key: "sources", Value: []any{
			Fields{{Key: "type", Value: "known"}, {Key: "CL", Value: 5}, {Key: "slots", Value: Fields{
				{Key: "0", Value: "at-will"},
				{Key: "1", Value: 7},
			}}},
		}},
		{Key: "entries", Value: []any{
			Fields{{Key: "name", Value: "detect magic"}, {Key: "level", Value: "0"}},
			Fields{{Key: "name", Value: "magic missile"}, {Key: "level", Value: "1"}, {Key: "DC", Value: 14}},
		}},
	})
	rec, err := ParseRecord("test-key", raw)
	require.NoError(t, err)

	require.NotNil(t, rec.Spells)
	require.Len(t, rec.Spells.Sources, 1)
	assert.Equal(t, "known", rec.Spells.Sources[0].Type)
	assert.Equal(t, "5", rec.Spells.Sources[0].CL.String())

	require.Len(t, rec.Spells.Entries, 2)
	assert.Equal(t, "magic missile", rec.Spells.Entries[1].Name)
	assert.Equal(t, "14", rec.Spells.Entries[1].DC.String())
}

func TestParseRecordUnknownKeys(t *testing.T) {
	raw := parseRaw(t, goblinDogJSON).Set("frobnicate", true)
	rec, err := ParseRecord("test-key", raw)
	require.NoError(t, err)

	assert.Equal(t, []string{"frobnicate"}, rec.UnknownKeys())
}

func TestParseRecordSourcesRequireStringName(t *testing.T) {
	raw := parseRaw(t, goblinDogJSON).Set("sources", []any{
		Fields{{Key: "name", Value: 7}, {Key: "page", Value: 1}},
	})
	_, err := ParseRecord("test-key", raw)
	require.Error(t, err)
	assert.True(t, errors.IsRecordError(err))
}
