package scraper

import (
	"fmt"
	"time"

	"github.com/gleanerhq/gleaner/models"
)

// executeActions runs the ordered list of page actions. Action n+1 never
// starts before action n's effects, including its post-delay, complete.
// It returns the number of actions performed; on failure the remaining
// actions are abandoned and the error names the failing action.
func executeActions(page Page, actions []models.Action, defaultTimeout time.Duration) (int, error) {
	for i, action := range actions {
		if err := executeSingleAction(page, action, defaultTimeout); err != nil {
			return i, models.NewScrapeError(
				models.ErrCodeActionFailed,
				fmt.Sprintf("action %d (%s) failed after %d completed: %v", i, action.Type, i, err),
				err,
			)
		}
	}
	return len(actions), nil
}

// executeSingleAction dispatches one action by kind.
func executeSingleAction(page Page, action models.Action, defaultTimeout time.Duration) error {
	switch action.Type {
	case models.ActionClick:
		return execClick(page, action)
	case models.ActionType:
		return execType(page, action)
	case models.ActionWait:
		return execWait(page, action, defaultTimeout)
	case models.ActionScroll:
		return execScroll(page, action)
	case models.ActionScreenshot:
		// Marker only: the screenshot itself is captured once, after all
		// actions, by the dynamic strategy.
		return waitAfter(page, action)
	default:
		return fmt.Errorf("unknown action type: %s", action.Type)
	}
}

// execClick clicks the first element matching the selector.
// Without a selector the action is a no-op.
func execClick(page Page, action models.Action) error {
	if action.Selector == "" {
		return nil
	}
	if err := page.Click(action.Selector); err != nil {
		return fmt.Errorf("click %q: %w", action.Selector, err)
	}
	return waitAfter(page, action)
}

// execType replaces the target's content with the value.
// Without both a selector and a value the action is a no-op.
func execType(page Page, action models.Action) error {
	if action.Selector == "" || action.Value == "" {
		return nil
	}
	if err := page.Fill(action.Selector, action.Value); err != nil {
		return fmt.Errorf("type into %q: %w", action.Selector, err)
	}
	return waitAfter(page, action)
}

// execWait dispatches on the wait sub-condition. A missing condition is a
// no-op.
func execWait(page Page, action models.Action, defaultTimeout time.Duration) error {
	timeout := defaultTimeout
	if action.Timeout > 0 {
		timeout = time.Duration(action.Timeout) * time.Millisecond
	}

	switch action.Condition {
	case models.WaitSelector:
		if action.Value == "" {
			return nil
		}
		if err := page.WaitForSelector(action.Value, timeout); err != nil {
			return fmt.Errorf("wait for selector %q (timeout %dms): %w",
				action.Value, timeout.Milliseconds(), err)
		}
		return nil
	case models.WaitNetworkIdle:
		if err := page.WaitLifecycle("networkidle", timeout); err != nil {
			return fmt.Errorf("wait for network idle (timeout %dms): %w",
				timeout.Milliseconds(), err)
		}
		return nil
	case models.WaitLoad:
		if err := page.WaitLifecycle("load", timeout); err != nil {
			return fmt.Errorf("wait for load (timeout %dms): %w",
				timeout.Milliseconds(), err)
		}
		return nil
	case models.WaitTimeout:
		return page.Sleep(timeout)
	default:
		return nil
	}
}

// execScroll brings a selector into view, or scrolls by a pixel amount.
// With neither, only the post-delay applies.
func execScroll(page Page, action models.Action) error {
	if action.Selector != "" {
		if err := page.ScrollIntoView(action.Selector); err != nil {
			return fmt.Errorf("scroll to %q: %w", action.Selector, err)
		}
	} else if action.Amount != 0 {
		if err := page.ScrollBy(action.Amount); err != nil {
			return fmt.Errorf("scroll by %dpx: %w", action.Amount, err)
		}
	}
	return waitAfter(page, action)
}

// waitAfter applies the action's optional post-delay.
func waitAfter(page Page, action models.Action) error {
	if action.WaitAfter <= 0 {
		return nil
	}
	return page.Sleep(time.Duration(action.WaitAfter) * time.Millisecond)
}
