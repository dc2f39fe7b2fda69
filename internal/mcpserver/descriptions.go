package mcpserver

// Tool descriptions with interpretation guidance for LLMs.

func describeParse() string {
	return `Parses a source tree into the canonical model: files, code elements and dependencies.

USE WHEN:
- You need an inventory of classes, functions and methods before reading code
- Checking which files and languages strata can see
- Finding parse problems that would hide code from other analyses

INTERPRETING RESULTS:
- Elements are classes, structs, traits, impl blocks, functions and methods
- Each function or method carries its McCabe complexity in metadata
- parse_errors lists files that were skipped or only partly parsed; analysis of other files is unaffected

METRICS RETURNED:
- Per-file: path, language, lines of code, element and dependency counts
- Totals: files, lines of code, parse duration`
}

func describeComplexity() string {
	return `Measures McCabe cyclomatic complexity of every function and method.

USE WHEN:
- Identifying functions that are hard to test or maintain
- Finding refactoring candidates before code reviews
- Estimating refactoring effort

INTERPRETING RESULTS:
- Complexity above the threshold (default 15): the function is listed with a recommendation
- Complexity > 20: reduce nesting by extracting conditionals and loops
- Complexity > 30: extract major blocks; consider Strategy or Command
- Complexity > 50: rewrite as several functions
- P90 shows the 90th percentile across all functions (codebase trend)

METRICS RETURNED:
- Summary: total functions and files, average, median, min, max, P90
- Functions over threshold: name, location, complexity, recommendation category
- Heatmap: files ranked by average complexity`
}

func describeArchitecture() string {
	return `Detects the architectural pattern of a codebase and maps its layers, components and dependencies.

USE WHEN:
- Orienting in an unfamiliar repository
- Checking whether code follows its intended layering
- Finding circular dependencies between components

INTERPRETING RESULTS:
- Pattern is one of MVC, CLEAN, HEXAGONAL, LAYERED, MICROSERVICES, MONOLITH or UNKNOWN
- Confidence < 0.5: the structure only loosely matches; treat the pattern as a hint
- Several candidate patterns: the directory layout is mixed and was resolved by priority
- Unlayered files do not belong to any layer of the detected pattern
- Cycles between components are always worth breaking

METRICS RETURNED:
- Pattern, candidate patterns, confidence
- Layers: files, lines of code, average complexity and rating
- Components: type, layer, responsibilities, dependencies
- Relationships with strength 0.0-1.0, dependency cycles, optional mermaid diagram`
}

func describeIssues() string {
	return `Runs every analyzer and returns one list of issues ordered by severity.

USE WHEN:
- Deciding what to fix first
- Gating a change on new HIGH severity findings
- Producing a short quality summary of a repository

INTERPRETING RESULTS:
- high-complexity: a function over the complexity threshold
- circular-dependency: components that depend on each other; always HIGH
- architecture-review: the detected architecture is uncertain or ambiguous
- Effort and impact are LOW, MEDIUM or HIGH; fix HIGH impact and LOW effort issues first

METRICS RETURNED:
- Issues: type, severity, location, message, recommendation, effort, impact
- Summary: totals by type and by severity`
}
