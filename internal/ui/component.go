package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind names the component type in step logs
type Kind string

const (
	KindButton   Kind = "button"
	KindLink     Kind = "link"
	KindInput    Kind = "input"
	KindTextarea Kind = "textarea"
	KindText     Kind = "text"
	KindListItem Kind = "list item"
)

// Component is a named element on a page. Actions wait until the element
// is visible and enabled; Should* assertions poll until the expectation
// holds or the view timeout passes
type Component struct {
	view    *View
	loc     Locator
	kind    Kind
	name    string
	section string
}

// Locator returns the component's locator
func (c *Component) Locator() Locator {
	return c.loc
}

// Name is the component name prefixed with its section
func (c *Component) Name() string {
	if c.section != "" {
		return fmt.Sprintf("[%s] %s", c.section, c.name)
	}
	return c.name
}

func (c *Component) step(action string) {
	c.view.log.Info().
		Str("step", fmt.Sprintf("%s | %s: %s", strings.ToUpper(string(c.kind[:1]))+string(c.kind[1:]), c.Name(), action)).
		Str("locator", c.loc.String()).
		Msg("UI step")
}

func (c *Component) failure(expectation, actual string) string {
	msg := fmt.Sprintf("%s: expected %s within %s", c.Name(), expectation, c.view.timeout)
	if actual != "" {
		msg += ", last seen " + actual
	}
	return msg
}

// assert polls probe until it reports true. probe returns what it saw so
// a timeout can name the last observed state; ErrNoMatch counts as not yet
func (c *Component) assert(ctx context.Context, expectation string, probe func(ctx context.Context) (bool, string, error)) error {
	var actual string
	err := c.view.Eventually(ctx, 0, "", func(ctx context.Context) (bool, error) {
		ok, seen, err := probe(ctx)
		if errors.Is(err, ErrNoMatch) {
			actual = "no matching element"
			return false, nil
		}
		if err != nil {
			return false, err
		}
		actual = seen
		return ok, nil
	})
	if err == nil {
		return nil
	}
	if isTimeout(err) {
		return &AssertionError{Component: c.Name(), Locator: c.loc.String(), Message: c.failure(expectation, actual), cause: err}
	}
	return fmt.Errorf("%s: %w", c.Name(), err)
}

func (c *Component) waitActionable(ctx context.Context) error {
	return c.assert(ctx, "to be visible and enabled", func(ctx context.Context) (bool, string, error) {
		visible, err := c.view.surface.Visible(ctx, c.loc)
		if err != nil || !visible {
			return false, "hidden", err
		}
		enabled, err := c.view.surface.Enabled(ctx, c.loc)
		if err != nil || !enabled {
			return false, "disabled", err
		}
		return true, "", nil
	})
}

// Click waits for the element to become actionable and clicks it once
func (c *Component) Click(ctx context.Context) error {
	c.step("click")
	if err := c.waitActionable(ctx); err != nil {
		return err
	}
	if err := c.view.surface.Click(ctx, c.loc); err != nil {
		return fmt.Errorf("%s: click failed: %w", c.Name(), err)
	}
	return nil
}

// DoubleClick waits for the element to become actionable and double clicks it
func (c *Component) DoubleClick(ctx context.Context) error {
	c.step("double click")
	if err := c.waitActionable(ctx); err != nil {
		return err
	}
	if err := c.view.surface.DoubleClick(ctx, c.loc); err != nil {
		return fmt.Errorf("%s: double click failed: %w", c.Name(), err)
	}
	return nil
}

// Fill replaces the element's value
func (c *Component) Fill(ctx context.Context, value string) error {
	c.step(fmt.Sprintf("fill with %q", value))
	if err := c.waitActionable(ctx); err != nil {
		return err
	}
	if err := c.view.surface.Fill(ctx, c.loc, value); err != nil {
		return fmt.Errorf("%s: fill failed: %w", c.Name(), err)
	}
	return nil
}

// FillAndVerify fills the element and waits until it reports the value back
func (c *Component) FillAndVerify(ctx context.Context, value string) error {
	if err := c.Fill(ctx, value); err != nil {
		return err
	}
	return c.ShouldHaveValue(ctx, value)
}

// Count returns how many elements the locator currently matches
func (c *Component) Count(ctx context.Context) (int, error) {
	return c.view.surface.Count(ctx, c.loc)
}

// ShouldBeVisible waits until the element is visible
func (c *Component) ShouldBeVisible(ctx context.Context) error {
	c.step("assert visible")
	return c.assert(ctx, "to be visible", func(ctx context.Context) (bool, string, error) {
		visible, err := c.view.surface.Visible(ctx, c.loc)
		return visible, "hidden", err
	})
}

// ShouldBeHidden waits until the element is hidden or gone
func (c *Component) ShouldBeHidden(ctx context.Context) error {
	c.step("assert hidden")
	return c.assert(ctx, "to be hidden", func(ctx context.Context) (bool, string, error) {
		visible, err := c.view.surface.Visible(ctx, c.loc)
		return !visible, "visible", err
	})
}

// ShouldHaveText waits until the element's normalized text equals text
func (c *Component) ShouldHaveText(ctx context.Context, text string) error {
	c.step(fmt.Sprintf("assert text is %q", text))
	want := NormalizeText(text)
	return c.assert(ctx, fmt.Sprintf("text %q", want), func(ctx context.Context) (bool, string, error) {
		got, err := c.view.surface.Text(ctx, c.loc)
		got = NormalizeText(got)
		return got == want, fmt.Sprintf("%q", got), err
	})
}

// ShouldContainText waits until the element's text contains fragment
func (c *Component) ShouldContainText(ctx context.Context, fragment string) error {
	c.step(fmt.Sprintf("assert text contains %q", fragment))
	return c.assert(ctx, fmt.Sprintf("text containing %q", fragment), func(ctx context.Context) (bool, string, error) {
		got, err := c.view.surface.Text(ctx, c.loc)
		got = NormalizeText(got)
		return strings.Contains(got, fragment), fmt.Sprintf("%q", got), err
	})
}

// ShouldNotContainText waits until the element's text lacks fragment
func (c *Component) ShouldNotContainText(ctx context.Context, fragment string) error {
	c.step(fmt.Sprintf("assert text does not contain %q", fragment))
	return c.assert(ctx, fmt.Sprintf("text without %q", fragment), func(ctx context.Context) (bool, string, error) {
		got, err := c.view.surface.Text(ctx, c.loc)
		got = NormalizeText(got)
		return !strings.Contains(got, fragment), fmt.Sprintf("%q", got), err
	})
}

// ShouldHaveValue waits until the input reports value
func (c *Component) ShouldHaveValue(ctx context.Context, value string) error {
	c.step(fmt.Sprintf("assert value is %q", value))
	return c.assert(ctx, fmt.Sprintf("value %q", value), func(ctx context.Context) (bool, string, error) {
		got, err := c.view.surface.Value(ctx, c.loc)
		return got == value, fmt.Sprintf("%q", got), err
	})
}

// ShouldBeEnabled waits until the element is enabled
func (c *Component) ShouldBeEnabled(ctx context.Context) error {
	c.step("assert enabled")
	return c.assert(ctx, "to be enabled", func(ctx context.Context) (bool, string, error) {
		if n, err := c.view.surface.Count(ctx, c.loc); err != nil || n == 0 {
			return false, "", errOrNoMatch(err)
		}
		enabled, err := c.view.surface.Enabled(ctx, c.loc)
		return enabled, "disabled", err
	})
}

// ShouldBeDisabled waits until the element is disabled
func (c *Component) ShouldBeDisabled(ctx context.Context) error {
	c.step("assert disabled")
	return c.assert(ctx, "to be disabled", func(ctx context.Context) (bool, string, error) {
		if n, err := c.view.surface.Count(ctx, c.loc); err != nil || n == 0 {
			return false, "", errOrNoMatch(err)
		}
		enabled, err := c.view.surface.Enabled(ctx, c.loc)
		return !enabled, "enabled", err
	})
}

// ShouldHaveCount waits until the locator matches exactly n elements
func (c *Component) ShouldHaveCount(ctx context.Context, n int) error {
	c.step(fmt.Sprintf("assert count is %d", n))
	return c.assert(ctx, fmt.Sprintf("%d element(s)", n), func(ctx context.Context) (bool, string, error) {
		got, err := c.view.surface.Count(ctx, c.loc)
		return got == n, fmt.Sprintf("%d", got), err
	})
}

func errOrNoMatch(err error) error {
	if err != nil {
		return err
	}
	return ErrNoMatch
}
