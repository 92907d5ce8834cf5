// Package wizard runs the interactive onboarding questionnaire: five factor
// questions plus style tags and primary use case, collected with a huh form.
// The engine itself never prompts; this is purely CLI-side input gathering.
package wizard

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/modelscout/modelscout/internal/factors"
)

// answerOptions maps the questionnaire's five-point scale onto [0,1].
var answerOptions = []huh.Option[float64]{
	huh.NewOption("Not important", 0.0),
	huh.NewOption("Slightly important", 0.25),
	huh.NewOption("Moderately important", 0.5),
	huh.NewOption("Very important", 0.75),
	huh.NewOption("Essential", 1.0),
}

var useCaseOptions = []huh.Option[string]{
	huh.NewOption("Generating images from text", "text-to-image"),
	huh.NewOption("Editing or transforming existing images", "image-to-image"),
	huh.NewOption("Video generation", "video"),
	huh.NewOption("Upscaling", "upscaling"),
}

// Run collects preferences interactively. Defaults pre-populate the form so a
// user can accept a preset and only adjust what they care about.
func Run(in io.Reader, out io.Writer, defaults factors.Preferences) (*factors.Preferences, error) {
	w := defaults.Weights
	useCase := defaults.UseCase
	tagsRaw := strings.Join(defaults.StyleTags, ", ")

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[float64]().
				Title("Output quality").
				Description("How much does maximum image fidelity matter?").
				Options(answerOptions...).
				Value(&w.Quality),
			huh.NewSelect[float64]().
				Title("Generation speed").
				Description("How much does fast turnaround matter?").
				Options(answerOptions...).
				Value(&w.Speed),
			huh.NewSelect[float64]().
				Title("Fine-grained control").
				Description("Pose control, inpainting, ControlNet-style guidance").
				Options(answerOptions...).
				Value(&w.Control),
			huh.NewSelect[float64]().
				Title("Consistency").
				Description("Stable characters and styles across generations").
				Options(answerOptions...).
				Value(&w.Consistency),
			huh.NewSelect[float64]().
				Title("Simplicity").
				Description("Prefer a setup that just works over maximum tweakability").
				Options(answerOptions...).
				Value(&w.Simplicity),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Primary use case").
				Options(useCaseOptions...).
				Value(&useCase),
			huh.NewInput().
				Title("Style tags").
				Description("Comma-separated, e.g. photorealistic, anime, cinematic").
				Placeholder("photorealistic, cinematic").
				Value(&tagsRaw),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("questionnaire failed: %w", err)
	}

	weights, err := factors.AggregateUser(w)
	if err != nil {
		return nil, err
	}

	return &factors.Preferences{
		Weights:   weights,
		StyleTags: splitAndTrim(tagsRaw),
		UseCase:   useCase,
	}, nil
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
