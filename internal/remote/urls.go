package remote

// Navigation targets on the server. These are opened in the system browser.

func (c *Client) PatientURL(patientID string) string {
	return c.resolve("pacientes/" + patientID + "/").String()
}

func (c *Client) EditPatientURL(patientID string) string {
	return c.resolve("pacientes/" + patientID + "/editar/").String()
}

func (c *Client) VisitURL(visitID string) string {
	return c.resolve("consultas/" + visitID + "/").String()
}

func (c *Client) EditVisitURL(visitID string) string {
	return c.resolve("consultas/" + visitID + "/editar/").String()
}

func (c *Client) PrintVisitURL(visitID string) string {
	return c.resolve("consultas/" + visitID + "/imprimir/").String()
}
