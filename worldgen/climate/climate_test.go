// SPDX-FileCopyrightText: 2024 Ridgeline Games, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package climate

import (
	"testing"

	"github.com/ridgelinegames/worldcore/worldgen/noise"

	"github.com/ridgelinegames/worldcore/world"
)

func TestTemperatureColderAtPolesAndAltitude(t *testing.T) {
	const w, h = 32, 32
	height := world.NewTilemapFilled[float32](w, h, 0)
	temp := Temperature(height, defaultEquatorTemperature)

	equator := temp.Get(0, h/2)
	pole := temp.Get(0, 0)
	if pole >= equator {
		t.Errorf("pole temperature %v should be colder than equator %v", pole, equator)
	}

	tall := world.NewTilemapFilled[float32](w, h, 3000)
	tallTemp := Temperature(tall, defaultEquatorTemperature)
	if tallTemp.Get(0, h/2) >= equator {
		t.Errorf("high elevation temperature %v should be colder than sea-level equator %v", tallTemp.Get(0, h/2), equator)
	}
}

func TestMoistureResetsOverOcean(t *testing.T) {
	const w, h = 32, 16
	height := world.NewTilemapFilled[float32](w, h, 500)
	for y := 0; y < h; y++ {
		height.Set(0, y, -100) // one ocean column
	}

	moisture := Moisture(noise.New(1), height)
	if got := moisture.Get(1, 4); got < 0.6 {
		t.Errorf("moisture just downwind of ocean = %v, want high (near 1)", got)
	}
}
