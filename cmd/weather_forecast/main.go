package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/icodeforyou/weatherboard-go/config"
	"github.com/icodeforyou/weatherboard-go/convert"
	"github.com/icodeforyou/weatherboard-go/forecast"
	"github.com/icodeforyou/weatherboard-go/hours"
	"github.com/icodeforyou/weatherboard-go/openweathermap"
	"github.com/icodeforyou/weatherboard-go/types"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	unit := flag.String("unit", "celsius", "temperature unit, celsius or fahrenheit")
	flag.Parse()

	city := strings.Join(flag.Args(), " ")
	if strings.TrimSpace(city) == "" {
		fmt.Fprintln(os.Stderr, "usage: weather_forecast [-config file] [-unit celsius|fahrenheit] <city>")
		os.Exit(2)
	}

	tempUnit, err := types.ParseTempUnit(*unit)
	if err != nil {
		panic(err)
	}

	cnfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	owm := openweathermap.New(
		cnfg.OpenWeatherMap.ApiKey,
		cnfg.OpenWeatherMap.GetBaseURL(),
		cnfg.OpenWeatherMap.GetTimeout(),
		0, 1)
	res, err := owm.GetForecast(context.Background(), city)
	if err != nil {
		panic(err)
	}

	loc := res.Location(hours.GuiLocation())
	buckets := forecast.BucketByDay(res.Samples, loc)

	fmt.Printf("%s, %s\n", res.City, res.Country)
	for _, s := range forecast.Summaries(buckets, forecast.MaxSummaryDays, "") {
		fmt.Printf("Date: %s, Min: %d%s, Max: %d%s, Code: %s\n",
			s.Date,
			convert.Temperature(s.MinTemp, tempUnit), tempUnit.Symbol(),
			convert.Temperature(s.MaxTemp, tempUnit), tempUnit.Symbol(),
			s.Code)
	}
}
