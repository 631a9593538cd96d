package triage

// Symptom is a key of the fixed checkbox vocabulary.
type Symptom string

const (
	Fever               Symptom = "fever"
	Cough               Symptom = "cough"
	Headache            Symptom = "headache"
	BodyPain            Symptom = "bodyPain"
	Nausea              Symptom = "nausea"
	Fatigue             Symptom = "fatigue"
	BreathingDifficulty Symptom = "breathingDifficulty"
	ChestPain           Symptom = "chestPain"
	SoreThroat          Symptom = "soreThroat"
	RunnyNose           Symptom = "runnyNose"
	Diarrhea            Symptom = "diarrhea"
	Vomiting            Symptom = "vomiting"
	Rash                Symptom = "rash"
	Dizziness           Symptom = "dizziness"
	AbdominalPain       Symptom = "abdominalPain"
	JointPain           Symptom = "jointPain"
	Chills              Symptom = "chills"
	Sneezing            Symptom = "sneezing"
)

// SymptomInfo describes one vocabulary entry. Phrase is the lowercase text
// a checked box contributes to keyword matching.
type SymptomInfo struct {
	Key    Symptom `json:"key"`
	Label  string  `json:"label"`
	Phrase string  `json:"phrase"`
}

var vocabulary = []SymptomInfo{
	{Fever, "Fever", "fever"},
	{Cough, "Cough", "cough"},
	{Headache, "Headache", "headache"},
	{BodyPain, "Body Pain", "body pain"},
	{Nausea, "Nausea", "nausea"},
	{Fatigue, "Fatigue", "fatigue"},
	{BreathingDifficulty, "Breathing Difficulty", "breathing difficulty"},
	{ChestPain, "Chest Pain", "chest pain"},
	{SoreThroat, "Sore Throat", "sore throat"},
	{RunnyNose, "Runny Nose", "runny nose"},
	{Diarrhea, "Diarrhea", "diarrhea"},
	{Vomiting, "Vomiting", "vomiting"},
	{Rash, "Skin Rash", "rash"},
	{Dizziness, "Dizziness", "dizziness"},
	{AbdominalPain, "Abdominal Pain", "abdominal pain"},
	{JointPain, "Joint Pain", "joint pain"},
	{Chills, "Chills", "chills"},
	{Sneezing, "Sneezing", "sneezing"},
}

var vocabularyIndex = func() map[Symptom]int {
	idx := make(map[Symptom]int, len(vocabulary))
	for i, info := range vocabulary {
		idx[info.Key] = i
	}
	return idx
}()

// Vocabulary returns the symptom checklist in display order.
func Vocabulary() []SymptomInfo {
	out := make([]SymptomInfo, len(vocabulary))
	copy(out, vocabulary)
	return out
}

// Known reports whether s belongs to the vocabulary.
func (s Symptom) Known() bool {
	_, ok := vocabularyIndex[s]
	return ok
}

// Phrase returns the matching phrase for s, or "" for unknown symptoms.
func (s Symptom) Phrase() string {
	if i, ok := vocabularyIndex[s]; ok {
		return vocabulary[i].Phrase
	}
	return ""
}
