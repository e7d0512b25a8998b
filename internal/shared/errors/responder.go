package errors

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the media type for problem responses.
const ContentTypeProblemJSON = "application/problem+json"

// ErrorMapper translates an application error into a problem, reporting whether it matched.
type ErrorMapper func(err error) (ProblemDetail, bool)

// Responder writes problem documents, consulting its mappers before falling back to 500.
type Responder struct {
	mappers []ErrorMapper
}

// NewResponder builds a responder with the given mappers, tried in order.
func NewResponder(mappers ...ErrorMapper) *Responder {
	return &Responder{mappers: mappers}
}

// Respond writes the problem and aborts the handler chain.
func Respond(c *gin.Context, problem ProblemDetail) {
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.AbortWithStatusJSON(problem.Status, problem)
}

// RespondError maps err and writes the resulting problem.
func (r *Responder) RespondError(c *gin.Context, err error) {
	Respond(c, r.Problem(err))
}

// Problem resolves the problem document for err without writing it.
func (r *Responder) Problem(err error) ProblemDetail {
	var problem ProblemDetail
	if errors.As(err, &problem) {
		return problem
	}
	if r != nil {
		for _, mapper := range r.mappers {
			if p, ok := mapper(err); ok {
				return p
			}
		}
	}
	return ErrInternal.WithDetail(err.Error())
}
