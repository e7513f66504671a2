package judge

// Judge prompt templates. Each asks for a bare JSON object so that
// ExtractJSON can recover the scores even when the model wraps the
// object in prose or code fences.

const f1Prompt = `You are an expert evaluator measuring the quality of AI-generated answers.

Your task is to compute PRECISION and RECALL so an F1 score can be derived.

USER QUESTION:
%s

EXPECTED ANSWER (ground truth):
%s

GENERATED ANSWER:
%s

INSTRUCTIONS:

1. PRECISION (0.0 to 1.0):
   - How much of the generated answer is CORRECT and RELEVANT?
   - Penalize incorrect, invented, or unnecessary information.
   - 1.0 = every statement is correct and relevant
   - 0.0 = nothing is correct or relevant

2. RECALL (0.0 to 1.0):
   - How much of the expected answer is PRESENT in the generated answer?
   - Penalize important information that was omitted.
   - 1.0 = all important information is present
   - 0.0 = none of the important information is present

3. REASONING:
   - Briefly justify your scores, citing specific correct or incorrect content.

IMPORTANT: Return ONLY a valid JSON object in the format:
{
  "precision": <value between 0.0 and 1.0>,
  "recall": <value between 0.0 and 1.0>,
  "reasoning": "<your explanation in at most 100 words>"
}

Do NOT add any text before or after the JSON.`

const clarityPrompt = `You are an expert evaluator measuring the CLARITY of AI-generated answers.

USER QUESTION:
%s

GENERATED ANSWER:
%s

EXPECTED ANSWER (reference):
%s

INSTRUCTIONS:

Score the CLARITY of the generated answer on these criteria:

1. ORGANIZATION (0.0 to 1.0): logical, well-structured, sensible ordering.
2. LANGUAGE (0.0 to 1.0): simple, direct, free of unnecessary jargon.
3. ABSENCE OF AMBIGUITY (0.0 to 1.0): leaves no doubt about what is being communicated.
4. CONCISENESS (0.0 to 1.0): concise without being terse, no redundant information.

Average the 4 criteria to obtain the final score.

IMPORTANT: Return ONLY a valid JSON object in the format:
{
  "score": <value between 0.0 and 1.0>,
  "reasoning": "<detailed explanation in at most 100 words>"
}

Do NOT add any text before or after the JSON.`

const precisionPrompt = `You are an expert evaluator detecting PRECISION issues and HALLUCINATIONS in AI answers.

USER QUESTION:
%s

EXPECTED ANSWER (ground truth):
%s

GENERATED ANSWER:
%s

INSTRUCTIONS:

Score the PRECISION of the generated answer:

1. ABSENCE OF HALLUCINATIONS (0.0 to 1.0):
   - Does the answer contain INVENTED or unverifiable claims?
   - 1.0 = no hallucinations detected, 0.0 = mostly invented.

2. FOCUS ON THE QUESTION (0.0 to 1.0):
   - Does the answer address EXACTLY what was asked, without digressing?
   - 1.0 = fully focused, 0.0 = completely off topic.

3. FACTUAL CORRECTNESS (0.0 to 1.0):
   - Is the information CORRECT when compared against the reference?
   - 1.0 = all correct, 0.0 = incorrect.

Average the 3 criteria to obtain the final score.

IMPORTANT: Return ONLY a valid JSON object in the format:
{
  "score": <value between 0.0 and 1.0>,
  "reasoning": "<detailed explanation in at most 100 words, cite examples>"
}

Do NOT add any text before or after the JSON.`

const tonePrompt = `You are an expert evaluator of agile user stories.

ORIGINAL BUG REPORT:
%s

GENERATED USER STORY:
%s

EXPECTED USER STORY (reference):
%s

INSTRUCTIONS:

Score the TONE of the generated user story on these criteria:

1. PROFESSIONALISM (0.0 to 1.0): professional documentation language, no excessive jargon or informality.
2. USER EMPATHY (0.0 to 1.0): shows understanding of the bug's impact on the user and centers their need.
3. VALUE FOCUS (0.0 to 1.0): articulates business value beyond "fix the bug", with a meaningful "so that" clause.
4. POSITIVE LANGUAGE (0.0 to 1.0): focuses on what the user WANTS to do, constructive and solution-oriented.

Average the 4 criteria to obtain the final score.

IMPORTANT: Return ONLY a valid JSON object in the format:
{
  "score": <value between 0.0 and 1.0>,
  "reasoning": "<detailed explanation in at most 150 words>"
}

Do NOT add any text before or after the JSON.`

const acceptanceCriteriaPrompt = `You are an expert evaluator of user story acceptance criteria.

ORIGINAL BUG REPORT:
%s

GENERATED USER STORY:
%s

EXPECTED USER STORY (reference):
%s

INSTRUCTIONS:

Score the ACCEPTANCE CRITERIA of the generated user story:

1. STRUCTURED FORMAT (0.0 to 1.0): uses Given-When-Then or similar, each criterion clearly separated.
2. SPECIFICITY AND TESTABILITY (0.0 to 1.0): concrete, measurable criteria that automated tests could be written from, no vague phrasing like "should work well".
3. APPROPRIATE QUANTITY (0.0 to 1.0): neither too few nor too many; 3-7 criteria is ideal for simple or medium bugs.
4. COMPLETE COVERAGE (0.0 to 1.0): covers success and error scenarios, edge cases where relevant, and the bug's technical requirements.

Average the 4 criteria to obtain the final score.

IMPORTANT: Return ONLY a valid JSON object in the format:
{
  "score": <value between 0.0 and 1.0>,
  "reasoning": "<detailed explanation with specific examples, at most 150 words>"
}

Do NOT add any text before or after the JSON.`

const storyFormatPrompt = `You are an expert evaluator of agile user story formatting.

ORIGINAL BUG REPORT:
%s

GENERATED USER STORY:
%s

EXPECTED USER STORY (reference):
%s

INSTRUCTIONS:

Score the FORMAT of the generated user story:

1. STANDARD TEMPLATE (0.0 to 1.0): follows "As a [user], I want [action], so that [benefit]" with all three parts present.
2. PERSONA IDENTIFICATION (0.0 to 1.0): the "As a..." clause names a specific, relevant user type, not a generic one.
3. CLEAR ACTION (0.0 to 1.0): the "I want..." clause describes a specific action tied to the bug, not a vague or overly technical one.
4. ARTICULATED BENEFIT (0.0 to 1.0): the "so that..." clause explains a real, non-trivial benefit connected to business value.
5. SECTION SEPARATION (0.0 to 1.0): the story itself is clearly separated from the acceptance criteria, which have their own section.

Average the 5 criteria to obtain the final score.

IMPORTANT: Return ONLY a valid JSON object in the format:
{
  "score": <value between 0.0 and 1.0>,
  "reasoning": "<detailed explanation with examples, at most 150 words>"
}

Do NOT add any text before or after the JSON.`

const completenessPrompt = `You are an expert evaluator of the completeness of user stories derived from bug reports.

ORIGINAL BUG REPORT:
%s

GENERATED USER STORY:
%s

EXPECTED USER STORY (reference):
%s

INSTRUCTIONS:

Score the COMPLETENESS of the user story relative to the bug:

1. PROBLEM COVERAGE (0.0 to 1.0): addresses ALL aspects of the reported bug with no important detail omitted.
2. TECHNICAL CONTEXT (0.0 to 1.0): preserves relevant technical details (logs, stack traces, endpoints) when the bug includes them; simple bugs need little technical context, complex bugs require a technical context section.
3. IMPACT AND SEVERITY (0.0 to 1.0): documents impact (affected users, financial loss) when the bug mentions it; critical bugs get more detailed treatment.
4. TECHNICAL TASKS (0.0 to 1.0): complex multi-component bugs should suggest a technical breakdown; do not penalize simple bugs for lacking one.
5. ADDITIONAL RELEVANT INFORMATION (0.0 to 1.0): preserves or references steps to reproduce, environment, and important business context.

Average the 5 criteria to obtain the final score.

IMPORTANT:
- SIMPLE bugs can score high without much technical detail.
- COMPLEX bugs MUST include additional sections (technical context, tasks, impact).
- Use the reference to calibrate the expected level of completeness.

Return ONLY a valid JSON object in the format:
{
  "score": <value between 0.0 and 1.0>,
  "reasoning": "<detailed explanation of what was covered well and what is missing, at most 200 words>"
}

Do NOT add any text before or after the JSON.`
