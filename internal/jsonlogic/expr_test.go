package jsonlogic

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpr_Unmarshal(t *testing.T) {
	t.Run("less than", func(t *testing.T) {
		var e Expr[bestVar, int64]
		require.NoError(t, json.Unmarshal([]byte(`{"<": [{"var": "best"}, 1]}`), &e))

		assert.Equal(t, OpLess, e.Op)
		require.NotNil(t, e.Value)
		assert.Equal(t, int64(1), *e.Value)
		assert.Equal(t, "best", e.Binding.Name())
	})

	t.Run("greater than", func(t *testing.T) {
		var e Expr[bestVar, int64]
		require.NoError(t, json.Unmarshal([]byte(`{">": [{"var": "best"}, -4]}`), &e))

		assert.Equal(t, OpGreater, e.Op)
		assert.Equal(t, int64(-4), *e.Value)
	})

	t.Run("equals null", func(t *testing.T) {
		var e Expr[tsVar, time.Time]
		require.NoError(t, json.Unmarshal([]byte(`{"==": [{"var": "ts"}, null]}`), &e))

		assert.Equal(t, OpEqual, e.Op)
		assert.Nil(t, e.Value)
	})

	t.Run("equals value", func(t *testing.T) {
		var e Expr[tsVar, time.Time]
		require.NoError(t, json.Unmarshal([]byte(`{"==": [{"var": "ts"}, "2024-05-01T12:00:00Z"]}`), &e))

		require.NotNil(t, e.Value)
		assert.True(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC).Equal(*e.Value))
	})

	t.Run("in", func(t *testing.T) {
		var e Expr[notesVar, string]
		require.NoError(t, json.Unmarshal([]byte(`{"in": [{"var": "notes"}, ["a", "b"]]}`), &e))

		assert.Equal(t, OpIn, e.Op)
		assert.Equal(t, []string{"a", "b"}, e.Values)
		assert.Nil(t, e.Value)
	})

	t.Run("in empty set", func(t *testing.T) {
		var e Expr[notesVar, string]
		require.NoError(t, json.Unmarshal([]byte(`{"in": [{"var": "notes"}, []]}`), &e))

		assert.NotNil(t, e.Values)
		assert.Empty(t, e.Values)
	})
}

func TestExpr_UnmarshalErrors(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		wantCode ErrorCode
		wantOp   string
		wantMsg  string
	}{
		{
			name:     "unknown operator",
			input:    `{"<=": [{"var": "best"}, 1]}`,
			wantCode: ErrCodeUnknownOperator,
			wantOp:   "<=",
			wantMsg:  `unknown operator "<="`,
		},
		{
			name:     "boolean composition is not supported",
			input:    `{"and": [{"<": [{"var": "best"}, 1]}, {">": [{"var": "best"}, 0]}]}`,
			wantCode: ErrCodeUnknownOperator,
			wantOp:   "and",
		},
		{
			name:     "no operator",
			input:    `{}`,
			wantCode: ErrCodeShapeMismatch,
			wantMsg:  "exactly one operator key, got 0",
		},
		{
			name:     "two operators",
			input:    `{"<": [{"var": "best"}, 1], ">": [{"var": "best"}, 0]}`,
			wantCode: ErrCodeShapeMismatch,
			wantMsg:  "exactly one operator key, got 2",
		},
		{
			name:     "repeated operator",
			input:    `{"<": [{"var": "best"}, 1], "<": [{"var": "best"}, 2]}`,
			wantCode: ErrCodeShapeMismatch,
			wantMsg:  "exactly one operator key, got 2",
		},
		{
			name:     "not an object",
			input:    `[{"var": "best"}, 1]`,
			wantCode: ErrCodeShapeMismatch,
			wantMsg:  "must be an object",
		},
		{
			name:     "operands not an array",
			input:    `{"<": 1}`,
			wantCode: ErrCodeShapeMismatch,
			wantOp:   "<",
			wantMsg:  "array of two elements",
		},
		{
			name:     "one operand",
			input:    `{"<": [{"var": "best"}]}`,
			wantCode: ErrCodeShapeMismatch,
			wantOp:   "<",
			wantMsg:  "exactly 2 operands, got 1",
		},
		{
			name:     "three operands",
			input:    `{"<": [{"var": "best"}, 1, 2]}`,
			wantCode: ErrCodeShapeMismatch,
			wantOp:   "<",
			wantMsg:  "exactly 2 operands, got 3",
		},
		{
			name:     "wrong column",
			input:    `{"<": [{"var": "notes"}, 1]}`,
			wantCode: ErrCodeNameMismatch,
			wantOp:   "<",
			wantMsg:  `can only receive "best", but instead received "notes"`,
		},
		{
			name:     "null binding",
			input:    `{"<": [null, 1]}`,
			wantCode: ErrCodeShapeMismatch,
			wantOp:   "<",
		},
		{
			name:     "less than null",
			input:    `{"<": [{"var": "best"}, null]}`,
			wantCode: ErrCodeShapeMismatch,
			wantOp:   "<",
			wantMsg:  "non-null operand",
		},
		{
			name:     "greater than null",
			input:    `{">": [{"var": "best"}, null]}`,
			wantCode: ErrCodeShapeMismatch,
			wantOp:   ">",
			wantMsg:  "non-null operand",
		},
		{
			name:     "string operand for int column",
			input:    `{"==": [{"var": "best"}, "1"]}`,
			wantCode: ErrCodeShapeMismatch,
			wantOp:   "==",
			wantMsg:  "operand string does not decode as int64",
		},
		{
			name:     "fractional operand for int column",
			input:    `{">": [{"var": "best"}, 1.5]}`,
			wantCode: ErrCodeShapeMismatch,
			wantOp:   ">",
		},
		{
			name:     "in without array",
			input:    `{"in": [{"var": "best"}, 1]}`,
			wantCode: ErrCodeShapeMismatch,
			wantOp:   "in",
			wantMsg:  "array of values",
		},
		{
			name:     "in with null",
			input:    `{"in": [{"var": "best"}, null]}`,
			wantCode: ErrCodeShapeMismatch,
			wantOp:   "in",
			wantMsg:  "array of values",
		},
		{
			name:     "in with null element",
			input:    `{"in": [{"var": "best"}, [1, null]]}`,
			wantCode: ErrCodeShapeMismatch,
			wantOp:   "in",
			wantMsg:  "element 1 is null",
		},
		{
			name:     "in with mistyped element",
			input:    `{"in": [{"var": "best"}, [1, "2"]]}`,
			wantCode: ErrCodeShapeMismatch,
			wantOp:   "in",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var e Expr[bestVar, int64]
			err := json.Unmarshal([]byte(tc.input), &e)

			require.Error(t, err)
			var de *DecodeError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tc.wantCode, de.Code)
			assert.Equal(t, tc.wantOp, de.Operator)
			if tc.wantMsg != "" {
				assert.Contains(t, de.Error(), tc.wantMsg)
			}

			// Failed decoding leaves the expression untouched
			assert.Equal(t, Expr[bestVar, int64]{}, e)
		})
	}
}

func TestExpr_TimestampOperand(t *testing.T) {
	var e Expr[tsVar, time.Time]
	err := json.Unmarshal([]byte(`{">": [{"var": "ts"}, "yesterday"]}`), &e)

	require.Error(t, err)
	assert.True(t, IsShapeMismatch(err))

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "time.Time", de.Expected)
	assert.NotNil(t, de.Unwrap())
}

func TestExpr_BoolIsNotOrdered(t *testing.T) {
	var e Expr[Var[boolColumn, bool], bool]
	err := json.Unmarshal([]byte(`{"<": [{"var": "flag"}, true]}`), &e)
	require.Error(t, err)
	assert.True(t, IsShapeMismatch(err))
	assert.Contains(t, err.Error(), "not defined for bool")

	require.NoError(t, json.Unmarshal([]byte(`{"==": [{"var": "flag"}, true]}`), &e))
	assert.True(t, *e.Value)
}

func TestExpr_RoundTrip(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		check func(t *testing.T, data []byte)
	}{
		{
			name:  "less than",
			input: `{"<":[{"var":"best"},1]}`,
			check: func(t *testing.T, data []byte) {
				var e Expr[bestVar, int64]
				require.NoError(t, json.Unmarshal(data, &e))
				out, err := json.Marshal(e)
				require.NoError(t, err)
				assert.JSONEq(t, string(data), string(out))
			},
		},
		{
			name:  "greater than",
			input: `{">":[{"var":"best"},9]}`,
			check: func(t *testing.T, data []byte) {
				var e Expr[bestVar, int64]
				require.NoError(t, json.Unmarshal(data, &e))
				out, err := json.Marshal(e)
				require.NoError(t, err)
				assert.JSONEq(t, string(data), string(out))
			},
		},
		{
			name:  "equals null",
			input: `{"==":[{"var":"ts"},null]}`,
			check: func(t *testing.T, data []byte) {
				var e Expr[tsVar, time.Time]
				require.NoError(t, json.Unmarshal(data, &e))
				out, err := json.Marshal(e)
				require.NoError(t, err)
				assert.JSONEq(t, string(data), string(out))
			},
		},
		{
			name:  "equals timestamp",
			input: `{"==":[{"var":"ts"},"2024-05-01T12:00:00Z"]}`,
			check: func(t *testing.T, data []byte) {
				var e Expr[tsVar, time.Time]
				require.NoError(t, json.Unmarshal(data, &e))
				out, err := json.Marshal(e)
				require.NoError(t, err)
				assert.JSONEq(t, string(data), string(out))
			},
		},
		{
			name:  "in",
			input: `{"in":[{"var":"notes"},["a","b"]]}`,
			check: func(t *testing.T, data []byte) {
				var e Expr[notesVar, string]
				require.NoError(t, json.Unmarshal(data, &e))
				out, err := json.Marshal(e)
				require.NoError(t, err)
				assert.JSONEq(t, string(data), string(out))
			},
		},
		{
			name:  "in empty",
			input: `{"in":[{"var":"notes"},[]]}`,
			check: func(t *testing.T, data []byte) {
				var e Expr[notesVar, string]
				require.NoError(t, json.Unmarshal(data, &e))
				out, err := json.Marshal(e)
				require.NoError(t, err)
				assert.JSONEq(t, string(data), string(out))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.check(t, []byte(tc.input))
		})
	}
}

func TestExpr_ConstructorsMarshal(t *testing.T) {
	testCases := []struct {
		name string
		expr any
		want string
	}{
		{name: "equal", expr: bestVar{}.Equal(3), want: `{"==":[{"var":"best"},3]}`},
		{name: "is null", expr: tsVar{}.IsNull(), want: `{"==":[{"var":"ts"},null]}`},
		{name: "less", expr: bestVar{}.Less(1), want: `{"<":[{"var":"best"},1]}`},
		{name: "greater", expr: bestVar{}.Greater(2), want: `{">":[{"var":"best"},2]}`},
		{name: "in", expr: notesVar{}.In("a", "b"), want: `{"in":[{"var":"notes"},["a","b"]]}`},
		{name: "in none", expr: notesVar{}.In(), want: `{"in":[{"var":"notes"},[]]}`},
		{name: "package equal", expr: Equal(notesVar{}, "x"), want: `{"==":[{"var":"notes"},"x"]}`},
		{name: "package less", expr: Less(bestVar{}, int64(5)), want: `{"<":[{"var":"best"},5]}`},
		{name: "package greater", expr: Greater(bestVar{}, int64(5)), want: `{">":[{"var":"best"},5]}`},
		{name: "package in", expr: In(bestVar{}, int64(1), int64(2)), want: `{"in":[{"var":"best"},[1,2]]}`},
		{name: "package is null", expr: IsNull[notesVar, string](notesVar{}), want: `{"==":[{"var":"notes"},null]}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.expr)
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(data))
		})
	}
}

func TestExpr_MarshalInvalid(t *testing.T) {
	_, err := json.Marshal(Expr[bestVar, int64]{})
	assert.Error(t, err)

	_, err = json.Marshal(Expr[bestVar, int64]{Op: OpLess})
	assert.Error(t, err)
}

func TestParseOp(t *testing.T) {
	for _, op := range Ops {
		got, err := ParseOp(string(op))
		require.NoError(t, err)
		assert.Equal(t, op, got)
	}

	_, err := ParseOp("!=")
	assert.True(t, IsUnknownOperator(err))
}
