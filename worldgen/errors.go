// SPDX-FileCopyrightText: 2024 Ridgeline Games, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package worldgen

import (
	"errors"
	"fmt"

	"github.com/ridgelinegames/worldcore/worldgen/erosion"
)

// InvalidConfigError reports a Config field outside its documented
// range, per spec §7. It is fatal to the Generate call that produced it.
type InvalidConfigError struct {
	Field  string
	Reason string
}

func (e InvalidConfigError) Error() string {
	return fmt.Sprintf("worldgen: invalid config field %q: %s", e.Field, e.Reason)
}

// ErrBudgetExceeded names spec §7's optional BudgetExceeded class. Config
// carries no wall-clock budget, so Generate never returns this value and
// never sets WorldData.Truncated or ErosionStats.Truncated.
var ErrBudgetExceeded = errors.New("worldgen: erosion budget exceeded")

// NumericalInstabilityError is erosion.NumericalInstabilityError
// re-exported at the package boundary, per spec §7: a NaN or Inf
// appeared in height during erosion, fatal, tagged with the stage name
// and iteration index it was detected at.
type NumericalInstabilityError = erosion.NumericalInstabilityError
