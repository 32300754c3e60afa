package symptom

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// defaultSymptoms is the feature ordering the reference disease model was
// trained against. Spelling quirks and the repeated fluid_overload entry are
// part of that ordering and must not be cleaned up.
var defaultSymptoms = []string{
	"itching", "skin_rash", "nodal_skin_eruptions", "continuous_sneezing",
	"shivering", "chills", "joint_pain", "stomach_pain", "acidity",
	"ulcers_on_tongue", "muscle_wasting", "vomiting", "burning_micturition",
	"spotting_ urination", "fatigue", "weight_gain", "anxiety",
	"cold_hands_and_feets", "mood_swings", "weight_loss", "restlessness",
	"lethargy", "patches_in_throat", "irregular_sugar_level", "cough",
	"high_fever", "sunken_eyes", "breathlessness", "sweating", "dehydration",
	"indigestion", "headache", "yellowish_skin", "dark_urine", "nausea",
	"loss_of_appetite", "pain_behind_the_eyes", "back_pain", "constipation",
	"abdominal_pain", "diarrhoea", "mild_fever", "yellow_urine",
	"yellowing_of_eyes", "acute_liver_failure", "fluid_overload",
	"swelling_of_stomach", "swelled_lymph_nodes", "malaise",
	"blurred_and_distorted_vision", "phlegm", "throat_irritation",
	"redness_of_eyes", "sinus_pressure", "runny_nose", "congestion",
	"chest_pain", "weakness_in_limbs", "fast_heart_rate",
	"pain_during_bowel_movements", "pain_in_anal_region", "bloody_stool",
	"irritation_in_anus", "neck_pain", "dizziness", "cramps", "bruising",
	"obesity", "swollen_legs", "swollen_blood_vessels", "puffy_face_and_eyes",
	"enlarged_thyroid", "brittle_nails", "swollen_extremeties",
	"excessive_hunger", "extra_marital_contacts", "drying_and_tingling_lips",
	"slurred_speech", "knee_pain", "hip_joint_pain", "muscle_weakness",
	"stiff_neck", "swelling_joints", "movement_stiffness",
	"spinning_movements", "loss_of_balance", "unsteadiness",
	"weakness_of_one_body_side", "loss_of_smell", "bladder_discomfort",
	"foul_smell_of urine", "continuous_feel_of_urine", "passage_of_gases",
	"internal_itching", "toxic_look_(typhos)", "depression", "irritability",
	"muscle_pain", "altered_sensorium", "red_spots_over_body", "belly_pain",
	"abnormal_menstruation", "dischromic _patches", "watering_from_eyes",
	"increased_appetite", "polyuria", "family_history", "mucoid_sputum",
	"rusty_sputum", "lack_of_concentration", "visual_disturbances",
	"receiving_blood_transfusion", "receiving_unsterile_injections", "coma",
	"stomach_bleeding", "distention_of_abdomen",
	"history_of_alcohol_consumption", "fluid_overload", "blood_in_sputum",
	"prominent_veins_on_calf", "palpitations", "painful_walking",
	"pus_filled_pimples", "blackheads", "scurring", "skin_peeling",
	"silver_like_dusting", "small_dents_in_nails", "inflammatory_nails",
	"blister", "red_sore_around_nose", "yellow_crust_ooze",
}

// Vocabulary is the ordered set of symptom identifiers a model understands.
// An identifier's position is its feature index. It is immutable once built.
type Vocabulary struct {
	symptoms []string
	index    map[string]int

	// names whose later occurrences were shadowed by an earlier position
	duplicates []string
}

func NewVocabulary(symptoms []string) (*Vocabulary, error) {
	if len(symptoms) == 0 {
		return nil, fmt.Errorf("vocabulary is empty")
	}

	v := &Vocabulary{
		symptoms: make([]string, len(symptoms)),
		index:    make(map[string]int, len(symptoms)),
	}
	copy(v.symptoms, symptoms)

	for i, s := range symptoms {
		key := Normalize(s)
		if key == "" {
			return nil, fmt.Errorf("vocabulary entry %d is blank", i)
		}
		if _, exists := v.index[key]; exists {
			// first position wins, the slot is kept so the vector length
			// still matches the trained model
			v.duplicates = append(v.duplicates, s)
			continue
		}
		v.index[key] = i
	}
	return v, nil
}

// DefaultVocabulary returns the 132-symptom ordering of the reference model.
func DefaultVocabulary() *Vocabulary {
	v, err := NewVocabulary(defaultSymptoms)
	if err != nil {
		panic(err)
	}
	return v
}

// LoadVocabulary reads one identifier per line. Blank lines and lines
// starting with '#' are skipped. Identifiers are not trimmed internally,
// only the line ending is dropped.
func LoadVocabulary(path string) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary: %w", err)
	}
	defer f.Close()

	var symptoms []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		symptoms = append(symptoms, trimmed)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}

	v, err := NewVocabulary(symptoms)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

func (v *Vocabulary) Len() int { return len(v.symptoms) }

// Index returns the feature position of name after normalization.
func (v *Vocabulary) Index(name string) (int, bool) {
	idx, ok := v.index[Normalize(name)]
	return idx, ok
}

// Symptoms returns a copy of the identifiers in feature order.
func (v *Vocabulary) Symptoms() []string {
	out := make([]string, len(v.symptoms))
	copy(out, v.symptoms)
	return out
}

// Duplicates lists identifiers that appear more than once. Only their first
// position is ever set by the encoder.
func (v *Vocabulary) Duplicates() []string {
	out := make([]string, len(v.duplicates))
	copy(out, v.duplicates)
	return out
}

// Normalize maps a caller-supplied name onto the vocabulary key space.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
