package dispatch_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediatorkit/transactional-dispatch-go/dispatch"
)

func Test_Dispatcher_Send_ReturnsHandlerResultUnchanged(t *testing.T) {
	// setup
	d, err := dispatch.NewDispatcher()
	require.NoError(t, err)

	registerErr := dispatch.RegisterHandlerFunc(d, func(_ context.Context, query greetReader) (string, error) {
		return "hello, " + query.Name, nil
	})
	require.NoError(t, registerErr)

	// act
	result, sendErr := dispatch.Send[string](context.Background(), d, greetReader{Name: "Anna"})

	// assert
	assert.NoError(t, sendErr)
	assert.Equal(t, "hello, Anna", result)
}

func Test_Dispatcher_Send_FailsWithHandlerNotFound(t *testing.T) {
	// setup
	d, err := dispatch.NewDispatcher()
	require.NoError(t, err)

	// act
	_, sendErr := dispatch.Send[string](context.Background(), d, greetReader{Name: "Anna"})

	// assert
	require.Error(t, sendErr)
	assert.ErrorIs(t, sendErr, dispatch.ErrHandlerNotFound)
	assert.Contains(t, sendErr.Error(), "GreetReader")
}

func Test_Dispatcher_Send_FailsWithNilRequest(t *testing.T) {
	d, err := dispatch.NewDispatcher()
	require.NoError(t, err)

	_, sendErr := dispatch.Send[string](context.Background(), d, nil)

	assert.ErrorIs(t, sendErr, dispatch.ErrNilRequest)
}

func Test_Dispatcher_Send_FailsWithResponseTypeMismatch(t *testing.T) {
	// setup
	d, err := dispatch.NewDispatcher()
	require.NoError(t, err)

	registerErr := dispatch.RegisterHandlerFunc(d, func(_ context.Context, query greetReader) (string, error) {
		return query.Name, nil
	})
	require.NoError(t, registerErr)

	// act - ask for an int although the handler produces a string
	_, sendErr := dispatch.Send[int](context.Background(), d, greetReader{Name: "Anna"})

	// assert
	assert.ErrorIs(t, sendErr, dispatch.ErrResponseTypeMismatch)
}

func Test_Dispatcher_RegisterHandler_RejectsSecondHandlerForSameRequestType(t *testing.T) {
	// setup
	d, err := dispatch.NewDispatcher()
	require.NoError(t, err)

	first := dispatch.RegisterHandlerFunc(d, func(_ context.Context, query greetReader) (string, error) {
		return query.Name, nil
	})
	require.NoError(t, first)

	// act
	second := dispatch.RegisterHandlerFunc(d, func(_ context.Context, query greetReader) (string, error) {
		return query.Name, nil
	})

	// assert
	assert.ErrorIs(t, second, dispatch.ErrHandlerAlreadyRegistered)
}

func Test_Dispatcher_Use_BehaviorsNestInRegistrationOrder(t *testing.T) {
	// setup
	d, err := dispatch.NewDispatcher()
	require.NoError(t, err)

	recorder := &callRecorder{}
	d.Use(
		&markerBehavior{name: "B1", recorder: recorder},
		&markerBehavior{name: "B2", recorder: recorder},
	)

	registerErr := dispatch.RegisterHandlerFunc(d, func(_ context.Context, query greetReader) (string, error) {
		recorder.record("handler")
		return query.Name, nil
	})
	require.NoError(t, registerErr)

	// act
	_, sendErr := dispatch.Send[string](context.Background(), d, greetReader{Name: "Anna"})

	// assert
	require.NoError(t, sendErr)
	assert.Equal(t, []string{"B1-pre", "B2-pre", "handler", "B2-post", "B1-post"}, recorder.recorded())
}

func Test_Dispatcher_Send_BehaviorShortCircuitSkipsHandler(t *testing.T) {
	// setup
	d, err := dispatch.NewDispatcher()
	require.NoError(t, err)

	denied := &dispatch.ForbiddenError{Message: "readers may not greet"}
	d.Use(dispatch.BehaviorFunc(func(_ context.Context, _ dispatch.Request, _ dispatch.Next) (any, error) {
		return nil, denied
	}))

	handlerInvoked := false
	registerErr := dispatch.RegisterHandlerFunc(d, func(_ context.Context, query greetReader) (string, error) {
		handlerInvoked = true
		return query.Name, nil
	})
	require.NoError(t, registerErr)

	// act
	_, sendErr := dispatch.Send[string](context.Background(), d, greetReader{Name: "Anna"})

	// assert
	var forbidden *dispatch.ForbiddenError
	require.ErrorAs(t, sendErr, &forbidden)
	assert.Same(t, denied, forbidden, "expected failures must pass through unchanged")
	assert.False(t, handlerInvoked)
}

func Test_Dispatcher_Send_WrapsUnexpectedErrorExactlyOnce(t *testing.T) {
	// setup
	d, err := dispatch.NewDispatcher()
	require.NoError(t, err)

	boom := errors.New("boom")
	registerErr := dispatch.RegisterHandlerFunc(d, func(_ context.Context, _ greetReader) (string, error) {
		return "", boom
	})
	require.NoError(t, registerErr)

	// act
	_, sendErr := dispatch.Send[string](context.Background(), d, greetReader{Name: "Anna"})

	// assert
	var applicationErr *dispatch.ApplicationError
	require.ErrorAs(t, sendErr, &applicationErr)
	assert.Equal(t, "GreetReader", applicationErr.Name)
	assert.ErrorIs(t, sendErr, boom)
	assert.Equal(t, 1, strings.Count(sendErr.Error(), "failed"), "the cause must be wrapped exactly once")
}

func Test_Dispatcher_Send_ConcurrentResolutionIsSafe(t *testing.T) {
	// setup
	d, err := dispatch.NewDispatcher()
	require.NoError(t, err)

	registerErr := dispatch.RegisterHandlerFunc(d, func(_ context.Context, query greetReader) (string, error) {
		return query.Name, nil
	})
	require.NoError(t, registerErr)

	// act - first resolution races across goroutines
	const callers = 16
	results := make(chan error, callers)

	for range callers {
		go func() {
			_, sendErr := dispatch.Send[string](context.Background(), d, greetReader{Name: "Anna"})
			results <- sendErr
		}()
	}

	// assert
	for range callers {
		assert.NoError(t, <-results)
	}
}
