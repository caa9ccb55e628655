package decompose

// decompositionPrompt is the system prompt for LLM-driven decomposition.
const decompositionPrompt = `Break the user's task into independent subtasks, each sized for a single executor.

Return ONLY a JSON array with this exact structure (no other text):
[
  {
    "op": "capability tag this subtask requires, e.g. summarize",
    "payload": {"key": "inputs this subtask needs"}
  }
]

Guidelines:
- Subtasks run concurrently; only split work that is truly independent
- op names the single capability the subtask needs, lowercase, one word where possible
- payload carries everything the executor needs; subtasks cannot see each other's output
- Return [] only if the task requires no work at all
- Use as few subtasks as the task allows`

// decompositionUserPrompt formats the task goal and payload for the model.
const decompositionUserPrompt = `Task goal:
%s

Task payload (JSON):
%s`
