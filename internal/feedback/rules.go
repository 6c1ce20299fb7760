package feedback

import "github.com/Krimson/sportscan/pkg/models"

// Rules - статические тексты профиля
type Rules struct {
	// Subject подставляется в предложение "{Subject} is {label}."
	Subject      string
	ReferenceURL string

	Meanings      map[string]string
	TierSentences map[Tier]string
	// Corrections добавляются при уверенности ниже CorrectionBelow
	Corrections     map[string]string
	CorrectionBelow float64

	InvalidLabel       string
	InvalidDisplay     string
	InvalidMeaning     string
	InvalidSuggestions string
}

const (
	UmpireReferenceURL   = "https://nsw.netball.com.au/sites/nsw/files/2022-10/HandSignals.pdf"
	ExerciseReferenceURL = "https://www.sportaus.gov.au/physical_literacy"

	// InvalidUmpireLabel - класс первичного классификатора для снимков без жеста
	InvalidUmpireLabel = "Not a Valid Umpire Hand Signal"
	InvalidDisplay     = "Invalid Signal"
)

// RulesFor возвращает правила профиля. Пустой referenceURL оставляет ссылку по умолчанию
func RulesFor(profile models.Profile, referenceURL string) Rules {
	var rules Rules
	if profile == models.ProfileExercise {
		rules = exerciseRules()
	} else {
		rules = umpireRules()
	}
	if referenceURL != "" {
		rules.ReferenceURL = referenceURL
	}
	return rules
}

func umpireRules() Rules {
	return Rules{
		Subject:      "Signal",
		ReferenceURL: UmpireReferenceURL,
		Meanings: map[string]string{
			"start_restart":  "Signal to start or restart the game",
			"direction_pass": "Indicates direction of pass",
			"timeout":        "Signaling a timeout",
		},
		TierSentences: map[Tier]string{
			TierExcellent: "Your signal execution is perfect! This would be an excellent example for training other umpires.",
			TierVeryHigh:  "Your signal is clear and well-executed, easily recognizable to players and coaches.",
			TierHigh:      "Your signal is good, but minor improvements in form could make it even clearer.",
			TierModerate:  "Your signal is recognizable but could use some practice to improve clarity.",
			TierLow:       "Your signal needs significant improvement to be clearly recognizable.",
		},
		Corrections: map[string]string{
			"start_restart": "To improve this signal: Make sure your arms are fully extended and your motion is clear and decisive. " +
				"Practice making the signal with more confidence and precision. " +
				"Keep your body facing forward and ensure your arm movements are synchronized.",
			"direction_pass": "To improve this signal: Point more clearly with your arm fully extended. " +
				"Make sure your body is positioned toward the direction you are indicating. " +
				"Your arm should be straight and your fingers together, with a clear pointing gesture to indicate direction.",
			"timeout": "To improve this signal: Form a clear T shape with your hands. " +
				"Keep your arms straight and make the gesture more pronounced. " +
				"One palm should be vertical while the other horizontal, creating a distinct T shape at chest height.",
		},
		CorrectionBelow:    70,
		InvalidLabel:       InvalidUmpireLabel,
		InvalidDisplay:     InvalidDisplay,
		InvalidMeaning:     "No valid umpire hand signal detected",
		InvalidSuggestions: "Please upload a clear umpire hand signal image",
	}
}

func exerciseRules() Rules {
	return Rules{
		Subject:      "Exercise",
		ReferenceURL: ExerciseReferenceURL,
		Meanings: map[string]string{
			"In_out":       "In-out ladder drill for foot coordination",
			"Zig_zag":      "Zig-zag run for agility and coordination",
			"360_rotation": "360 degree rotation for balance control",
			"Squat":        "Squat for lower body power",
			"T_run":        "T-run for change of direction speed",
			"X_drill":      "X-drill for multidirectional agility",
		},
		TierSentences: map[Tier]string{
			TierExcellent: "Your movement is textbook and could be used as a demonstration for other athletes.",
			TierVeryHigh:  "Your movement is clean and controlled, easily recognizable to coaches.",
			TierHigh:      "Your movement is good, but small adjustments in form would make it more consistent.",
			TierModerate:  "Your movement is recognizable but needs practice to become consistent.",
			TierLow:       "Your movement needs significant work before it is clearly recognizable.",
		},
		Corrections: map[string]string{
			"In_out": "To improve this exercise: Stay on the balls of your feet and keep your steps short and quick. " +
				"Land each foot fully inside or outside the ladder square before moving on.",
			"Zig_zag": "To improve this exercise: Lower your hips when changing direction and push off the outside foot. " +
				"Keep your eyes up and your arms driving with each cut.",
			"360_rotation": "To improve this exercise: Keep your core braced and your arms close to your body during the turn. " +
				"Land softly with bent knees and hold the landing for a second.",
			"Squat": "To improve this exercise: Keep your chest up and your heels on the ground. " +
				"Push your hips back and drive up through the whole foot.",
		},
		CorrectionBelow:    70,
		InvalidDisplay:     InvalidDisplay,
		InvalidMeaning:     "No supported exercise detected",
		InvalidSuggestions: "Please upload a clear video of one supported exercise",
	}
}
