package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptTextAnalysisSystem instructs the model how to read a text report.
	// This prompt has no format placeholders.
	PromptTextAnalysisSystem = "text_analysis_system"

	// PromptTextAnalysisUser wraps the extracted report text.
	// The prompt template expects a single %s placeholder for the report text.
	PromptTextAnalysisUser = "text_analysis_user"

	// PromptImageAnalysisSystem instructs the model how to read a scanned report.
	// This prompt has no format placeholders.
	PromptImageAnalysisSystem = "image_analysis_system"

	// PromptImageAnalysisUser accompanies the report image.
	// This prompt has no format placeholders.
	PromptImageAnalysisUser = "image_analysis_user"

	// PromptSimplifySystem instructs the model to rewrite an analysis for a patient.
	// This prompt has no format placeholders.
	PromptSimplifySystem = "simplify_system"

	// PromptSimplifyUser carries the analysis to simplify.
	// The prompt template expects %s (summary) and %s (findings JSON) placeholders.
	PromptSimplifyUser = "simplify_user"
)

// PromptNames returns every well-known prompt name.
func PromptNames() []string {
	return []string{
		PromptTextAnalysisSystem,
		PromptTextAnalysisUser,
		PromptImageAnalysisSystem,
		PromptImageAnalysisUser,
		PromptSimplifySystem,
		PromptSimplifyUser,
	}
}

// PromptStoreAware is an optional interface for services that can use custom prompts.
// Services implementing this interface can have their prompt templates customised
// by injecting a PromptStore after construction.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use hardcoded default prompts.
	SetPromptStore(store PromptStore)
}
