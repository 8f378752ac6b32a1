package domain

// TestCase is one input/expected-output pair under test
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"output"`
}

// TestSuite is the ordered collection of cases for one source program
type TestSuite struct {
	Cases []TestCase
}

// NewTestSuite builds a suite from parallel input and output slices.
// The slices must have equal length.
func NewTestSuite(inputs, outputs []string) *TestSuite {
	suite := &TestSuite{Cases: make([]TestCase, 0, len(inputs))}
	for i := range inputs {
		suite.Cases = append(suite.Cases, TestCase{Input: inputs[i], ExpectedOutput: outputs[i]})
	}
	return suite
}

// Count returns the number of cases in the suite
func (s *TestSuite) Count() int {
	if s == nil {
		return 0
	}
	return len(s.Cases)
}

// Inputs returns the case inputs in order
func (s *TestSuite) Inputs() []string {
	inputs := make([]string, 0, s.Count())
	if s == nil {
		return inputs
	}
	for _, tc := range s.Cases {
		inputs = append(inputs, tc.Input)
	}
	return inputs
}

// Outputs returns the expected outputs in order
func (s *TestSuite) Outputs() []string {
	outputs := make([]string, 0, s.Count())
	if s == nil {
		return outputs
	}
	for _, tc := range s.Cases {
		outputs = append(outputs, tc.ExpectedOutput)
	}
	return outputs
}
