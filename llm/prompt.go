package llm

import (
	"fmt"
	"strings"
)

// formatRules is appended to every code prompt; the reply parser depends on it.
const formatRules = `Output format rules:
- Declare every file on its own line as "FILE: <relative path>", including the file name and extension.
- Put the complete file content right after the declaration inside a fenced block opened with three backticks and a language tag, and closed with three backticks.
- Implement all logic end to end; never leave a function body empty.
- Do not use bold, italics or other markdown decoration around file declarations.`

// SystemPrompt seeds every conversation.
const SystemPrompt = `You are a developer agent that writes code for Next.js apps, components and features on request.
Components live under src/components, pages under src/app or src/pages, API routes under src/pages/api.
Use TypeScript (.tsx for React components) and Tailwind CSS for styling. Add "use client" to components with client-side logic.
Pages must not hold state; they compose existing components.

` + formatRules + `

When the code needs packages that are not installed yet, finish with a dependency block:

` + "```json" + `
{"modules": [{"name": "axios", "version": "^1.7.0"}]}
` + "```"

// PlanPrompt asks for a development outline without code. request is the
// user's own wording, for example "create a todo app".
func PlanPrompt(request string) string {
	return fmt.Sprintf(`Provide a detailed plan for this request: %s
Return only the plan for now, no code. Outline the APIs, components and pages the app needs, in the order they should be built, as a single JSON block:

%s
{
  "apis": [{"name": "ApiName", "description": "what the route does"}],
  "components": [{"name": "ComponentName", "description": "what it renders and which API it consumes"}],
  "pages": [{"name": "PageName", "description": "which components it composes"}]
}
%s`, strings.TrimSpace(request), "```json", "```")
}

// DependencyPrompt asks for the npm modules the generated code needs.
const DependencyPrompt = `List the npm modules required to run the code generated so far that are not installed yet.
Use the latest stable version of each module unless a specific version is needed for compatibility.
Reply with only this JSON block and no explanation:

` + "```json" + `
{
  "modules": [
    {"name": "axios", "version": "^1.7.0"},
    {"name": "zod", "version": "^3.23.0"}
  ]
}
` + "```"

const componentPrompt = `Create the React component %q using TypeScript for a Next.js app.
%s
- Put the component in src/components/%s/%s.tsx and its prop types in a types.ts next to it, using TypeScript interfaces.
- Use useState and useEffect for state and effects, Tailwind CSS for styling, and a .module.css file only if extra styles are needed.
- Start the file with "use client" if it has client-side logic.

` + formatRules

const pagePrompt = `Create the Next.js page %q using TypeScript.
%s
- Import and render the components created earlier; do not create new components.
- No state or effect hooks in the page; use Tailwind CSS for layout and a .module.css file only if needed.

` + formatRules

const apiPrompt = `Create the Next.js API route %q using TypeScript under src/pages/api/.
%s
- Switch on req.method, answer with proper status codes (200, 201, 400, 405, 500) and validate request bodies.
- Use async functions with try/catch around external calls.
- Keep the whole route in one file and put request and response types in a types.ts next to it.

` + formatRules

// StepPrompt renders the code prompt for one plan step. kind is "api",
// "component" or "page"; anything else gets a generic prompt.
func StepPrompt(kind, name, description string) string {
	detail := ""
	if d := strings.TrimSpace(description); d != "" {
		detail = "Purpose: " + d
	}

	switch kind {
	case "api":
		return fmt.Sprintf(apiPrompt, name, detail)
	case "component":
		return fmt.Sprintf(componentPrompt, name, detail, name, name)
	case "page":
		return fmt.Sprintf(pagePrompt, name, detail)
	default:
		return fmt.Sprintf("Create %s.\n%s\n\n%s", name, detail, formatRules)
	}
}
