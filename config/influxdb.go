package config

import (
	"os"
	"time"

	influxdbhelper "github.com/cbrake/influxdbhelper/v2"
	client "github.com/influxdata/influxdb1-client/v2"
)

var (
	InfluxDB     *InfluxClient
	InfluxHelper influxdbhelper.Client
)

type InfluxClient struct {
	client client.Client
}

func NewInfluxDB() error {
	c, err := client.NewHTTPClient(client.HTTPConfig{
		Addr:     os.Getenv("INFLUXDB_URL"),
		Username: os.Getenv("INFLUXDB_USER"),
		Password: os.Getenv("INFLUXDB_PASS"),
	})

	if err != nil {
		return err
	}

	InfluxDB = &InfluxClient{
		client: c,
	}

	helper, err := influxdbhelper.NewClient(os.Getenv("INFLUXDB_URL"), os.Getenv("INFLUXDB_USER"), os.Getenv("INFLUXDB_PASS"), "ns")
	if err != nil {
		return err
	}

	InfluxHelper = helper.UseDB(os.Getenv("INFLUXDB_DATABASE"))

	return nil
}

func (c *InfluxClient) NewBatchPoints() (client.BatchPoints, error) {
	return client.NewBatchPoints(client.BatchPointsConfig{
		Database:  os.Getenv("INFLUXDB_DATABASE"),
		Precision: "ns",
	})
}

func (c *InfluxClient) NewPoint(name string, tags map[string]string, fields map[string]interface{}) {
	bp, err := c.NewBatchPoints()

	if err != nil {
		Logger.Errorf("Failed to create new batch point %v", err.Error())
	}

	point, err := client.NewPoint(name, tags, fields, time.Now())
	if err != nil {
		Logger.Errorf("Error %v", err.Error())
	}

	bp.AddPoint(point)

	err = c.client.Write(bp)
	if err != nil {
		Logger.Errorf("Error %v", err.Error())
	}
}
